// Package fonts provides the typefaces used by the SVG and raster renderers.
//
// The Go font family ships inside golang.org/x/image, so the faces are
// available without files on disk. The raster renderer rasterizes them with
// freetype; the SVG renderer can inline them as base64 @font-face data.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name for the embedded faces.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers without the embedded font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

// RegularTTF returns the regular weight TTF data.
func RegularTTF() []byte {
	return goregular.TTF
}

// BoldTTF returns the bold weight TTF data.
func BoldTTF() []byte {
	return gobold.TTF
}

// Parsed fonts and base64 encodings are computed once on first access.
var (
	parseOnce     sync.Once
	regular, bold *truetype.Font
	parseErr      error

	b64Once             sync.Once
	regularB64, boldB64 string
)

func parse() error {
	parseOnce.Do(func() {
		if regular, parseErr = truetype.Parse(goregular.TTF); parseErr != nil {
			return
		}
		bold, parseErr = truetype.Parse(gobold.TTF)
	})
	return parseErr
}

// Face returns a new font face at size pixels (72 DPI).
// Faces are not safe for concurrent use, so callers get their own.
func Face(size float64, isBold bool) (font.Face, error) {
	if err := parse(); err != nil {
		return nil, err
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// RegularBase64 returns the regular TTF data as a base64 string.
func RegularBase64() string {
	encodeOnce()
	return regularB64
}

// BoldBase64 returns the bold TTF data as a base64 string.
func BoldBase64() string {
	encodeOnce()
	return boldB64
}

func encodeOnce() {
	b64Once.Do(func() {
		regularB64 = base64.StdEncoding.EncodeToString(goregular.TTF)
		boldB64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
}
