package render

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/siteview/pkg/layout"
	"github.com/matzehuels/siteview/pkg/observability"
	"github.com/matzehuels/siteview/pkg/site"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocale sets the locale used to format the built area.
func WithLocale(tag language.Tag) Option {
	return func(r *Renderer) { r.printer = NewPrinter(tag) }
}

// Renderer draws layouts onto a shared surface and stats panel.
// It is not safe for concurrent use; callers render from one goroutine.
type Renderer struct {
	surface Surface
	stats   StatsPanel
	printer *message.Printer
}

// New creates a Renderer for the given surface and stats panel.
// A nil stats panel discards statistics.
func New(surface Surface, stats StatsPanel, opts ...Option) *Renderer {
	r := &Renderer{
		surface: surface,
		stats:   stats,
		printer: NewPrinter(DefaultLocale),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render clears the surface and draws l. A nil layout leaves the surface and
// the stats panel untouched.
func (r *Renderer) Render(l *layout.Layout) {
	if l == nil {
		return
	}
	start := time.Now()

	r.surface.Clear()
	r.drawSetback()
	r.drawPlaza()
	for _, b := range l.Buildings {
		r.drawBuilding(b)
	}
	if r.stats != nil {
		r.stats.SetStats(StatsFor(r.printer, l))
	}

	observability.Render().OnRender(l.ID, len(l.Buildings), time.Since(start))
}

func (r *Renderer) drawSetback() {
	r.surface.StrokeRect(site.MapRect(site.SetbackRect()), Stroke{
		Color: colorSetback,
		Width: 1,
		Dash:  setbackDash,
	})
}

func (r *Renderer) drawPlaza() {
	p := site.MapRect(site.PlazaRect())
	r.surface.FillRect(p, colorPlazaFill)
	r.surface.StrokeRect(p, Stroke{Color: colorPlaza, Width: plazaStrokeWidth})
	r.surface.FillText(plazaLabel, site.CanvasWidth/2, site.CanvasHeight/2, plazaFont, colorPlaza)
}

func (r *Renderer) drawBuilding(b layout.Building) {
	style := StyleFor(b.Type)
	px := site.MapRect(b.Rect())

	r.surface.FillRect(px, style.Fill)
	r.surface.StrokeRect(px, Stroke{Color: colorBorder, Width: 1})
	r.surface.FillText(style.Glyph, px.CenterX(), px.CenterY(), glyphFont, colorGlyph)
}
