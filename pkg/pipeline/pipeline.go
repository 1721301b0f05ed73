// Package pipeline turns candidate layouts into exportable artifacts.
//
// The browser draws onto live surfaces; everything that leaves the process
// (files written by the render command, downloads served by the HTTP viewer)
// goes through this package instead, so both entry points produce identical
// bytes for the same layout and options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg", "png"}, Locale: "de-DE"}
//	artifacts, err := runner.Render(ctx, &layout, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := artifacts["svg"]
//
// Without a cache, call [Render] directly.
package pipeline

import (
	"slices"

	"golang.org/x/text/language"

	"github.com/matzehuels/siteview/pkg/cache"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG pixel density relative to the 800×560 canvas.
	DefaultScale = 1.0

	// MaxScale bounds PNG output at 8000×5600 pixels.
	MaxScale = 10.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// Formats lists the supported output formats in documentation order.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
}

// =============================================================================
// Options
// =============================================================================

// Options configures artifact rendering.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Locale is a BCP 47 tag controlling the built-area separators.
	Locale string `json:"locale,omitempty"`

	// Scale multiplies PNG dimensions.
	Scale float64 `json:"scale,omitempty"`

	// Title is written into the SVG <title> and the JSON document.
	Title string `json:"title,omitempty"`

	// EmbedFonts inlines the Go fonts into SVG output so it renders the
	// same everywhere.
	EmbedFonts bool `json:"embed_fonts,omitempty"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Locale == "" {
		o.Locale = render.DefaultLocale.String()
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks formats, scale and locale.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g out of range (0, %g]", o.Scale, MaxScale)
	}
	if o.Locale != "" {
		if _, err := o.LocaleTag(); err != nil {
			return err
		}
	}
	return nil
}

// LocaleTag parses Locale. An empty locale yields render.DefaultLocale.
func (o *Options) LocaleTag() (language.Tag, error) {
	if o.Locale == "" {
		return render.DefaultLocale, nil
	}
	if err := errors.ValidateLocale(o.Locale); err != nil {
		return language.Und, err
	}
	tag, err := language.Parse(o.Locale)
	if err != nil {
		return language.Und, errors.Wrap(errors.ErrCodeInvalidInput, err, "unknown locale %q", o.Locale)
	}
	return tag, nil
}

// ArtifactKeyOpts returns the cache key options for one format.
// Scale only affects PNG, so other formats share a key across scales.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Locale: o.Locale, Title: o.Title}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if format == FormatSVG && o.EmbedFonts {
		k.Format = "svg+fonts"
	}
	return k
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want one of %v)", format, Formats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}
