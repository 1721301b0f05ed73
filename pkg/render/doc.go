// Package render draws a candidate layout onto a drawing surface.
//
// # Overview
//
// The [Renderer] turns one [layout.Layout] into a fixed sequence of drawing
// operations against a [Surface] and publishes the summary statistics to a
// [StatsPanel]:
//
//  1. Clear the surface
//  2. Dashed setback boundary, 10 m inside the site edge
//  3. Central 40×40 m plaza with its label
//  4. Every building in slice order, colored and labeled by type
//  5. Summary statistics (tower counts, built area, compliance label)
//
// Rendering a nil layout is a no-op: the surface keeps whatever it showed.
//
// # Surfaces
//
// A [Surface] is the minimal canvas contract the renderer needs. Several
// implementations exist:
//
//   - [Recorder]: keeps the display list in memory (tests, JSON export)
//   - [svg]: writes an SVG document
//   - [raster]: rasterizes with fogleman/gg and encodes PNG
//   - [cells]: approximates the canvas on a terminal character grid
//
// [Multi] fans one render pass out to several surfaces:
//
//	rec := render.NewRecorder()
//	doc := svg.New()
//	r := render.New(render.Multi(rec, doc), render.NewStatsBoard())
//	r.Render(&l)
//
// # Building Styles
//
// Fill color and glyph are looked up in [BuildingStyles], keyed by
// [layout.Type]. Adding a building type means adding a table entry.
//
// [svg]: github.com/matzehuels/siteview/pkg/render/svg
// [raster]: github.com/matzehuels/siteview/pkg/render/raster
// [cells]: github.com/matzehuels/siteview/pkg/render/cells
package render
