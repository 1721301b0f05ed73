package layout

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleResponse = `{
  "layouts": [
    {
      "id": 1,
      "towersA": 1,
      "towersB": 1,
      "builtArea": 1000,
      "rules": {"siteBoundary": true, "minDistance": true, "boundarySetback": true, "neighbourMix": true, "plazaClear": true},
      "buildings": [
        {"type": "A", "x": 20, "y": 20, "w": 30, "h": 20},
        {"type": "B", "x": 70.5, "y": 15.25, "w": 20, "h": 20}
      ]
    }
  ]
}`

func TestDecode(t *testing.T) {
	resp, err := Decode(strings.NewReader(sampleResponse))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(resp.Layouts) != 1 {
		t.Fatalf("got %d layouts, want 1", len(resp.Layouts))
	}

	l := resp.Layouts[0]
	if l.ID != 1 || l.TowersA != 1 || l.TowersB != 1 || l.BuiltArea != 1000 {
		t.Errorf("summary = %+v", l)
	}
	if l.Rules == nil || !l.Rules.NeighbourMix {
		t.Errorf("rules not decoded: %+v", l.Rules)
	}

	want := []Building{
		{X: 20, Y: 20, W: 30, H: 20, Type: TypeA},
		{X: 70.5, Y: 15.25, W: 20, H: 20, Type: TypeB},
	}
	if len(l.Buildings) != len(want) {
		t.Fatalf("got %d buildings, want %d", len(l.Buildings), len(want))
	}
	for i, b := range l.Buildings {
		if b != want[i] {
			t.Errorf("building %d = %+v, want %+v", i, b, want[i])
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"layouts": []}`},
		{"missing field", `{}`},
		{"null field", `{"layouts": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeBytes([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeBytes() error: %v", err)
			}
			if len(resp.Layouts) != 0 {
				t.Errorf("got %d layouts, want 0", len(resp.Layouts))
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"unknown type", `{"layouts":[{"buildings":[{"type":"C","x":0,"y":0,"w":1,"h":1}]}]}`},
		{"wrong shape", `{"layouts": "many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBytes([]byte(tt.body)); err == nil {
				t.Error("DecodeBytes() should fail")
			}
		})
	}
}

func TestTypeText(t *testing.T) {
	for _, typ := range Types {
		data, err := json.Marshal(typ)
		if err != nil {
			t.Fatalf("Marshal(%v) error: %v", typ, err)
		}
		var back Type
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", data, err)
		}
		if back != typ {
			t.Errorf("round trip %v -> %s -> %v", typ, data, back)
		}
	}

	if _, err := json.Marshal(Type(9)); err == nil {
		t.Error("Marshal of invalid type should fail")
	}
}

func TestTitle(t *testing.T) {
	if got := (Layout{ID: 7}).Title(0); got != "Layout #7" {
		t.Errorf("Title() = %q, want %q", got, "Layout #7")
	}
	if got := (Layout{}).Title(2); got != "Layout #3" {
		t.Errorf("Title() = %q, want %q", got, "Layout #3")
	}
}
