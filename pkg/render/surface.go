package render

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/siteview/pkg/site"
)

// Surface is a drawing target in pixel space.
// All coordinates are drawing-space pixels with a top-left origin.
type Surface interface {
	// Clear erases the entire surface.
	Clear()
	// FillRect paints the interior of r.
	FillRect(r site.Rect, c color.NRGBA)
	// StrokeRect outlines r without filling it.
	StrokeRect(r site.Rect, s Stroke)
	// FillText draws text centered horizontally and vertically on (x, y).
	FillText(text string, x, y float64, f Font, c color.NRGBA)
}

// Stroke describes an outline.
type Stroke struct {
	Color color.NRGBA
	Width float64
	Dash  []float64 // alternating on/off lengths in pixels; nil for solid
}

// Font describes a text face by pixel size and weight.
type Font struct {
	Size float64
	Bold bool
}

// Hex formats c as "#rrggbb", ignoring alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opacity returns the alpha channel of c in [0, 1].
func Opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}

// Over composites src over an opaque dst and returns an opaque color.
func Over(src, dst color.NRGBA) color.NRGBA {
	a := float64(src.A) / 255
	mix := func(s, d uint8) uint8 {
		return uint8(float64(s)*a + float64(d)*(1-a) + 0.5)
	}
	return color.NRGBA{R: mix(src.R, dst.R), G: mix(src.G, dst.G), B: mix(src.B, dst.B), A: 255}
}

// Multi returns a Surface that forwards every call to each of surfaces in order.
func Multi(surfaces ...Surface) Surface {
	return multi(surfaces)
}

type multi []Surface

func (m multi) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

func (m multi) FillRect(r site.Rect, c color.NRGBA) {
	for _, s := range m {
		s.FillRect(r, c)
	}
}

func (m multi) StrokeRect(r site.Rect, st Stroke) {
	for _, s := range m {
		s.StrokeRect(r, st)
	}
}

func (m multi) FillText(text string, x, y float64, f Font, c color.NRGBA) {
	for _, s := range m {
		s.FillText(text, x, y, f, c)
	}
}
