package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/matzehuels/siteview/pkg/layout"
)

// StatusCompliant is shown for every rendered layout. The generation service
// only returns layouts that passed its rule checks, so the label is not
// computed here.
const StatusCompliant = "VALID COMPLIANT"

// DefaultLocale is used for number formatting when no locale is configured.
var DefaultLocale = language.AmericanEnglish

// Stats holds the four display slots next to the canvas.
type Stats struct {
	TowersA   string `json:"towersA"`
	TowersB   string `json:"towersB"`
	BuiltArea string `json:"builtArea"`
	Status    string `json:"status"`
}

// StatsPanel receives the summary statistics of each rendered layout.
type StatsPanel interface {
	SetStats(Stats)
}

// StatsBoard is an in-memory StatsPanel.
type StatsBoard struct {
	stats Stats
	set   bool
}

// NewStatsBoard returns an empty board.
func NewStatsBoard() *StatsBoard {
	return &StatsBoard{}
}

// SetStats implements StatsPanel.
func (b *StatsBoard) SetStats(s Stats) {
	b.stats = s
	b.set = true
}

// Stats returns the last published statistics and whether any were published.
func (b *StatsBoard) Stats() (Stats, bool) {
	return b.stats, b.set
}

// NewPrinter returns a message printer for tag.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// FormatArea formats a built area with the printer's thousands separators and
// at most three fraction digits.
func FormatArea(p *message.Printer, area float64) string {
	return p.Sprint(number.Decimal(area, number.MaxFractionDigits(3)))
}

// StatsFor derives the display slots for l. Aggregates are copied verbatim.
func StatsFor(p *message.Printer, l *layout.Layout) Stats {
	return Stats{
		TowersA:   strconv.Itoa(l.TowersA),
		TowersB:   strconv.Itoa(l.TowersB),
		BuiltArea: FormatArea(p, l.BuiltArea),
		Status:    StatusCompliant,
	}
}
