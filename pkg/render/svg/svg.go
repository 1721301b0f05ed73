// Package svg implements a render.Surface that produces an SVG document.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/siteview/pkg/fonts"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/site"
)

// Option configures a Surface.
type Option func(*Surface)

// WithEmbeddedFonts inlines the Go font family as @font-face data so the
// document renders identically without the fonts installed.
func WithEmbeddedFonts() Option { return func(s *Surface) { s.embedFonts = true } }

// WithTitle sets the document <title>.
func WithTitle(title string) Option { return func(s *Surface) { s.title = title } }

// Surface accumulates drawing operations as SVG elements.
// Clear discards everything drawn so far.
type Surface struct {
	body       bytes.Buffer
	embedFonts bool
	title      string
}

// New returns a cleared surface.
func New(opts ...Option) *Surface {
	s := &Surface{}
	for _, opt := range opts {
		opt(s)
	}
	s.Clear()
	return s
}

// SetTitle replaces the document title.
func (s *Surface) SetTitle(title string) { s.title = title }

// Clear implements render.Surface.
func (s *Surface) Clear() {
	s.body.Reset()
	fmt.Fprintf(&s.body, `  <rect width="%s" height="%s" fill="%s"/>`+"\n",
		num(site.CanvasWidth), num(site.CanvasHeight), render.Hex(render.Background()))
}

// FillRect implements render.Surface.
func (s *Surface) FillRect(r site.Rect, c color.NRGBA) {
	fmt.Fprintf(&s.body, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`+"\n",
		num(r.X), num(r.Y), num(r.W), num(r.H), render.Hex(c), opacity("fill-opacity", c))
}

// StrokeRect implements render.Surface.
func (s *Surface) StrokeRect(r site.Rect, st render.Stroke) {
	var dash string
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d)
		}
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	fmt.Fprintf(&s.body, `  <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s"%s stroke-width="%s"%s/>`+"\n",
		num(r.X), num(r.Y), num(r.W), num(r.H),
		render.Hex(st.Color), opacity("stroke-opacity", st.Color), num(st.Width), dash)
}

// FillText implements render.Surface.
func (s *Surface) FillText(text string, x, y float64, f render.Font, c color.NRGBA) {
	weight := "normal"
	if f.Bold {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `  <text x="%s" y="%s" font-size="%s" font-weight="%s" fill="%s"%s text-anchor="middle" dominant-baseline="central">`,
		num(x), num(y), num(f.Size), weight, render.Hex(c), opacity("fill-opacity", c))
	xml.EscapeText(&s.body, []byte(text))
	s.body.WriteString("</text>\n")
}

// Bytes returns the complete SVG document.
func (s *Surface) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s" font-family="%s">`+"\n",
		num(site.CanvasWidth), num(site.CanvasHeight), num(site.CanvasWidth), num(site.CanvasHeight),
		escapeAttr(fonts.FallbackFontFamily))
	if s.title != "" {
		buf.WriteString("  <title>")
		xml.EscapeText(&buf, []byte(s.title))
		buf.WriteString("</title>\n")
	}
	if s.embedFonts {
		renderFontFaces(&buf)
	}
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// WriteTo writes the complete SVG document to w.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

func renderFontFaces(buf *bytes.Buffer) {
	buf.WriteString("  <defs><style>\n")
	fmt.Fprintf(buf, "    @font-face { font-family: '%s'; font-weight: normal; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.RegularBase64())
	fmt.Fprintf(buf, "    @font-face { font-family: '%s'; font-weight: bold; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.BoldBase64())
	buf.WriteString("  </style></defs>\n")
}

func opacity(attr string, c color.NRGBA) string {
	if c.A == 0xff {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, attr, strconv.FormatFloat(render.Opacity(c), 'f', 3, 64))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeAttr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

var _ render.Surface = (*Surface)(nil)
