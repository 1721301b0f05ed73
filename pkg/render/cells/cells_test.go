package cells

import (
	"strings"
	"testing"

	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/site"
)

func TestCellsLayout(t *testing.T) {
	s := New()
	render.New(s, nil).Render(&layout.Layout{
		Buildings: []layout.Building{{X: 20, Y: 20, W: 10, H: 10, Type: layout.TypeA}},
	})

	blue := render.StyleFor(layout.TypeA).Fill
	tests := []struct {
		name     string
		col, row int
		rune     rune
	}{
		{"setback corner", 5, 2, '┌'},
		{"setback dashed edge", 50, 2, '╌'},
		{"setback dashed side", 5, 10, '╎'},
		{"plaza label", 48, 17, 'P'},
		{"plaza label end", 52, 17, 'A'},
		{"building corner", 10, 5, '┌'},
		{"building glyph", 12, 6, 'A'},
		{"outside", 1, 1, ' '},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.At(tt.col, tt.row).Rune; got != tt.rune {
				t.Errorf("At(%d,%d) = %q, want %q", tt.col, tt.row, got, tt.rune)
			}
		})
	}

	if got := s.At(11, 6).BG; got != blue {
		t.Errorf("building background = %v, want %v", got, blue)
	}
	if got := s.At(15, 6).BG; got == blue {
		t.Error("fill leaked past the building")
	}
	if !s.At(12, 6).Bold {
		t.Error("glyph should be bold")
	}
}

func TestCellsTinyRectStillVisible(t *testing.T) {
	s := New()
	s.FillRect(site.Rect{X: 401, Y: 281, W: 2, H: 2}, render.StyleFor(layout.TypeB).Fill)

	if got := s.At(50, 17).BG; got != render.StyleFor(layout.TypeB).Fill {
		t.Errorf("tiny rect cell = %v", got)
	}
}

func TestCellsClipping(t *testing.T) {
	s := New(WithSize(10, 5))
	s.FillRect(site.Rect{X: -100, Y: -100, W: 2000, H: 2000}, render.StyleFor(layout.TypeA).Fill)
	s.FillText("overflowing label", 790, 550, render.Font{Size: 10}, render.Background())
	s.FillText("gone", 10, 9999, render.Font{Size: 10}, render.Background())

	cols, rows := s.Size()
	if cols != 10 || rows != 5 {
		t.Fatalf("Size() = %d,%d", cols, rows)
	}
	if got := s.At(0, 0).BG; got != render.StyleFor(layout.TypeA).Fill {
		t.Errorf("corner not filled: %v", got)
	}
	if (s.At(-1, 0) != Cell{}) {
		t.Error("out-of-range At should return zero Cell")
	}
}

func TestCellsPlainAndString(t *testing.T) {
	s := New(WithSize(20, 7))
	render.New(s, nil).Render(&layout.Layout{})

	plain := s.Plain()
	lines := strings.Split(plain, "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != 20 {
			t.Errorf("line %d has %d runes, want 20", i, n)
		}
	}
	if !strings.Contains(plain, "PLAZA") {
		t.Errorf("plain output missing label:\n%s", plain)
	}
	if styled := s.String(); !strings.Contains(styled, "P") || strings.Count(styled, "\n") != 6 {
		t.Errorf("styled output malformed:\n%s", styled)
	}
}

func TestCellsClear(t *testing.T) {
	s := New()
	render.New(s, nil).Render(&layout.Layout{})
	s.Clear()

	if strings.TrimSpace(strings.ReplaceAll(s.Plain(), "\n", "")) != "" {
		t.Error("Clear should blank every cell")
	}
}
