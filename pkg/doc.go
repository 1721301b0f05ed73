// Package pkg provides the core libraries for siteview, a browser for
// generated site layouts.
//
// # Overview
//
// A generation service proposes candidate arrangements of buildings on a
// 200 m × 140 m site. Siteview fetches a batch of candidates, draws one at a
// time on an 800 × 560 canvas and lets the operator page between them. The
// pkg directory is organized into four areas:
//
//  1. Domain - [site], [layout], [render], [browser], [generate]
//  2. Outputs - [render/svg], [render/raster], [render/cells], [pipeline]
//  3. Infrastructure - [store], [cache], [config], [observability], [errors]
//  4. Serving - [server]
//
// # Architecture
//
// The data flow for one generation request:
//
//	Generation service (GET /generate-layouts)
//	         ↓
//	    [generate] Controller (loading flag, failure notification)
//	         ↓
//	    [browser] Browser (candidate list, selection, page controls)
//	         ↓
//	    [render] Renderer (site → canvas mapping, colors, stats panel)
//	         ↓
//	    Surface: SVG, PNG, terminal cells or a recorded display list
//
// # Quick Start
//
// Fetch candidates and write the first one as SVG:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/siteview/pkg/browser"
//	    "github.com/matzehuels/siteview/pkg/generate"
//	    "github.com/matzehuels/siteview/pkg/render"
//	    "github.com/matzehuels/siteview/pkg/render/svg"
//	)
//
//	surface := svg.New()
//	b := browser.New(render.New(surface, render.NewStatsBoard()))
//	ctrl := generate.NewController(generate.NewHTTPClient(generate.DefaultEndpoint), b)
//	if err := ctrl.RequestGeneration(context.Background()); err != nil {
//	    return err
//	}
//	os.WriteFile("layout-1.svg", surface.Bytes(), 0o644)
//
// # Main Packages
//
// ## Domain
//
// [site] - Site and canvas dimensions, the setback and plaza rectangles, and
// the meters-to-pixels mapping. Y grows downward on both sides.
//
// [layout] - Candidate layouts, buildings and the generation response format.
//
// [render] - Draws one layout onto a [render.Surface] and fills a
// [render.StatsPanel]. [render.Recorder] keeps a display list for tests and
// JSON export.
//
// [browser] - Pagination state: the candidate list, the selected index and
// one page control per candidate.
//
// [generate] - The generation request controller and its HTTP, file and
// history clients.
//
// ## Infrastructure
//
// [store] - Candidate-set history with file, SQLite, Redis and MongoDB
// backends.
//
// [cache] - Rendered artifact cache (file, Redis, null).
//
// [pipeline] - Render a layout to svg, png and json through the cache. Used by
// the CLI and the HTTP viewer.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/browser/...  # Specific package
//	go test -run Example ./... # Examples only
package pkg
