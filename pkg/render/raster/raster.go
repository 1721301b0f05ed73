// Package raster implements a render.Surface backed by an in-memory bitmap.
//
// Drawing uses fogleman/gg with the Go font family; the result can be
// encoded as PNG.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/siteview/pkg/fonts"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/site"
)

// Option configures a Surface.
type Option func(*Surface)

// WithScale sets the device pixel ratio (default 1 for an 800×560 image).
func WithScale(s float64) Option {
	return func(r *Surface) {
		if s > 0 {
			r.scale = s
		}
	}
}

// Surface draws into an RGBA bitmap. Coordinates are scaled by hand rather
// than through the context transform so line widths and glyph sizes scale
// along with positions.
type Surface struct {
	dc    *gg.Context
	scale float64
	faces map[render.Font]font.Face
}

// New returns a surface cleared to the background color.
func New(opts ...Option) *Surface {
	s := &Surface{scale: 1, faces: make(map[render.Font]font.Face)}
	for _, opt := range opts {
		opt(s)
	}
	s.dc = gg.NewContext(int(site.CanvasWidth*s.scale), int(site.CanvasHeight*s.scale))
	s.Clear()
	return s
}

// Clear implements render.Surface.
func (s *Surface) Clear() {
	s.dc.SetColor(render.Background())
	s.dc.Clear()
}

// FillRect implements render.Surface.
func (s *Surface) FillRect(r site.Rect, c color.NRGBA) {
	s.dc.DrawRectangle(r.X*s.scale, r.Y*s.scale, r.W*s.scale, r.H*s.scale)
	s.dc.SetColor(c)
	s.dc.Fill()
}

// StrokeRect implements render.Surface.
func (s *Surface) StrokeRect(r site.Rect, st render.Stroke) {
	dash := make([]float64, len(st.Dash))
	for i, d := range st.Dash {
		dash[i] = d * s.scale
	}
	s.dc.SetDash(dash...)
	s.dc.SetLineWidth(st.Width * s.scale)
	s.dc.SetColor(st.Color)
	s.dc.DrawRectangle(r.X*s.scale, r.Y*s.scale, r.W*s.scale, r.H*s.scale)
	s.dc.Stroke()
	s.dc.SetDash()
}

// FillText implements render.Surface.
func (s *Surface) FillText(text string, x, y float64, f render.Font, c color.NRGBA) {
	s.dc.SetFontFace(s.face(f))
	s.dc.SetColor(c)
	s.dc.DrawStringAnchored(text, x*s.scale, y*s.scale, 0.5, 0.5)
}

func (s *Surface) face(f render.Font) font.Face {
	if face, ok := s.faces[f]; ok {
		return face
	}
	face, err := fonts.Face(f.Size*s.scale, f.Bold)
	if err != nil {
		face = basicfont.Face7x13
	}
	s.faces[f] = face
	return face
}

// Image returns the current bitmap.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodePNG writes the bitmap to w as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// PNG returns the bitmap encoded as PNG.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ render.Surface = (*Surface)(nil)
