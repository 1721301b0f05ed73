package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/render"
)

func nrgbaAt(s *Surface, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(s.Image().At(x, y)).(color.NRGBA)
}

func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= 2 && d(a.G, b.G) <= 2 && d(a.B, b.B) <= 2 && d(a.A, b.A) <= 2
}

func sample() *layout.Layout {
	return &layout.Layout{
		Buildings: []layout.Building{
			{X: 20, Y: 20, W: 10, H: 10, Type: layout.TypeA},
			{X: 150, Y: 100, W: 10, H: 10, Type: layout.TypeB},
		},
	}
}

func TestRasterPixels(t *testing.T) {
	s := New()
	render.New(s, nil).Render(sample())

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"background", 5, 5, render.Background()},
		{"type A interior", 85, 85, render.StyleFor(layout.TypeA).Fill},
		{"type B interior", 605, 405, render.StyleFor(layout.TypeB).Fill},
		{"plaza interior", 330, 210, render.Over(color.NRGBA{R: 0xd9, G: 0x46, B: 0xef, A: 51}, render.Background())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nrgbaAt(s, tt.x, tt.y); !near(got, tt.want) {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRasterClear(t *testing.T) {
	s := New()
	render.New(s, nil).Render(sample())
	s.Clear()

	if got := nrgbaAt(s, 85, 85); !near(got, render.Background()) {
		t.Errorf("pixel after Clear = %v, want background", got)
	}
}

func TestRasterPNG(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		w, h int
	}{
		{"default", nil, 800, 560},
		{"retina", []Option{WithScale(2)}, 1600, 1120},
		{"ignores non-positive scale", []Option{WithScale(0)}, 800, 560},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.opts...)
			render.New(s, nil).Render(sample())

			data, err := s.PNG()
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}
