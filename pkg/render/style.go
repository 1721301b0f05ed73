package render

import (
	"image/color"

	"github.com/matzehuels/siteview/pkg/layout"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorSetback    = color.NRGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff} // slate-300
	colorPlaza      = color.NRGBA{R: 0xd9, G: 0x46, B: 0xef, A: 0xff} // fuchsia-500
	colorPlazaFill  = color.NRGBA{R: 0xd9, G: 0x46, B: 0xef, A: 51}   // fuchsia-500 at 0.2
	colorTowerA     = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff} // blue-500
	colorTowerB     = color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff} // emerald-500
	colorBorder     = color.NRGBA{A: 26}                               // black at 0.1
	colorGlyph      = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorBackground = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var (
	setbackDash      = []float64{5, 5}
	plazaLabel       = "PLAZA"
	plazaStrokeWidth = 2.0
)

var (
	plazaFont = Font{Size: 12, Bold: true}
	glyphFont = Font{Size: 10, Bold: true}
)

// Background is the color surfaces clear to when they need an opaque base.
func Background() color.NRGBA { return colorBackground }

// =============================================================================
// Building Styles
// =============================================================================

// BuildingStyle is the visual treatment of one building type.
type BuildingStyle struct {
	Fill  color.NRGBA
	Glyph string
}

// BuildingStyles maps every building type to its fill color and glyph.
var BuildingStyles = map[layout.Type]BuildingStyle{
	layout.TypeA: {Fill: colorTowerA, Glyph: "A"},
	layout.TypeB: {Fill: colorTowerB, Glyph: "B"},
}

// StyleFor returns the style for t. Unknown types fall back to a neutral
// gray with the type's string form as glyph; decoding rejects them before
// they get here.
func StyleFor(t layout.Type) BuildingStyle {
	if s, ok := BuildingStyles[t]; ok {
		return s
	}
	return BuildingStyle{Fill: colorSetback, Glyph: t.String()}
}
