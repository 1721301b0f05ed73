package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/render/raster"
	"github.com/matzehuels/siteview/pkg/render/svg"
)

// Document is the JSON export of one rendered layout: the input, the stats
// panel contents and the display list.
type Document struct {
	Title  string           `json:"title,omitempty"`
	Layout *layout.Layout   `json:"layout"`
	Stats  render.Stats     `json:"stats"`
	Frame  *render.Recorder `json:"frame"`
}

// Render generates output artifacts in the requested formats.
func Render(l *layout.Layout, opts Options) (map[string][]byte, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no layout to render")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(l, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders a single format. opts.Formats is ignored.
func RenderFormat(l *layout.Layout, format string, opts Options) ([]byte, error) {
	tag, err := opts.LocaleTag()
	if err != nil {
		return nil, err
	}
	locale := render.WithLocale(tag)

	var data []byte
	switch format {
	case FormatSVG:
		svgOpts := []svg.Option{svg.WithTitle(opts.Title)}
		if opts.EmbedFonts {
			svgOpts = append(svgOpts, svg.WithEmbeddedFonts())
		}
		s := svg.New(svgOpts...)
		render.New(s, nil, locale).Render(l)
		data = s.Bytes()
	case FormatPNG:
		s := raster.New(raster.WithScale(opts.Scale))
		render.New(s, nil, locale).Render(l)
		data, err = s.PNG()
	case FormatJSON:
		rec, board := render.NewRecorder(), render.NewStatsBoard()
		render.New(rec, board, locale).Render(l)
		stats, _ := board.Stats()
		data, err = json.MarshalIndent(Document{Title: opts.Title, Layout: l, Stats: stats, Frame: rec}, "", "  ")
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
