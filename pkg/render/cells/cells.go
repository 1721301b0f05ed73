// Package cells implements a render.Surface on a terminal character grid.
//
// Every cell stands for a block of canvas pixels. A fill covers the cells
// whose centers lie inside the rectangle (at least one cell), strokes are
// drawn with box-drawing runes on the outermost covered cells, and text is
// written centered on the cell that contains its anchor. [Surface.String]
// renders the grid with lipgloss colors; [Surface.Plain] returns runes only.
package cells

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/site"
)

const (
	// DefaultCols is the default grid width.
	DefaultCols = 100
	// DefaultRows is the default grid height. Terminal cells are roughly
	// twice as tall as wide, so 100×35 keeps the canvas aspect ratio.
	DefaultRows = 35
)

// Cell is one character position.
type Cell struct {
	Rune rune
	FG   color.NRGBA
	BG   color.NRGBA
	Bold bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithSize sets the grid dimensions. Non-positive values keep the default.
func WithSize(cols, rows int) Option {
	return func(s *Surface) {
		if cols > 0 {
			s.cols = cols
		}
		if rows > 0 {
			s.rows = rows
		}
	}
}

// Surface is a grid of colored cells.
type Surface struct {
	cols, rows int
	cells      []Cell
}

// New returns a cleared grid.
func New(opts ...Option) *Surface {
	s := &Surface{cols: DefaultCols, rows: DefaultRows}
	for _, opt := range opts {
		opt(s)
	}
	s.cells = make([]Cell, s.cols*s.rows)
	s.Clear()
	return s
}

// Size returns the grid dimensions.
func (s *Surface) Size() (cols, rows int) { return s.cols, s.rows }

// At returns the cell at (col, row). Out-of-range positions return the zero Cell.
func (s *Surface) At(col, row int) Cell {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return Cell{}
	}
	return s.cells[row*s.cols+col]
}

func (s *Surface) cellW() float64 { return site.CanvasWidth / float64(s.cols) }
func (s *Surface) cellH() float64 { return site.CanvasHeight / float64(s.rows) }

// Clear implements render.Surface.
func (s *Surface) Clear() {
	bg := render.Background()
	for i := range s.cells {
		s.cells[i] = Cell{Rune: ' ', BG: bg, FG: bg}
	}
}

// FillRect implements render.Surface.
func (s *Surface) FillRect(r site.Rect, c color.NRGBA) {
	c0, c1, ok := span(r.X, r.W, s.cellW(), s.cols)
	if !ok {
		return
	}
	r0, r1, ok := span(r.Y, r.H, s.cellH(), s.rows)
	if !ok {
		return
	}
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			cell := &s.cells[row*s.cols+col]
			cell.BG = render.Over(c, cell.BG)
			if c.A == 0xff {
				cell.Rune = ' '
			}
		}
	}
}

// StrokeRect implements render.Surface.
func (s *Surface) StrokeRect(r site.Rect, st render.Stroke) {
	c0, c1, ok := span(r.X, r.W, s.cellW(), s.cols)
	if !ok {
		return
	}
	r0, r1, ok := span(r.Y, r.H, s.cellH(), s.rows)
	if !ok {
		return
	}

	h, v := '─', '│'
	if len(st.Dash) > 0 {
		h, v = '╌', '╎'
	}
	for col := c0; col <= c1; col++ {
		s.line(col, r0, h, st.Color)
		s.line(col, r1, h, st.Color)
	}
	for row := r0; row <= r1; row++ {
		s.line(c0, row, v, st.Color)
		s.line(c1, row, v, st.Color)
	}
	if c0 < c1 && r0 < r1 {
		s.line(c0, r0, '┌', st.Color)
		s.line(c1, r0, '┐', st.Color)
		s.line(c0, r1, '└', st.Color)
		s.line(c1, r1, '┘', st.Color)
	}
}

func (s *Surface) line(col, row int, ch rune, c color.NRGBA) {
	cell := &s.cells[row*s.cols+col]
	cell.Rune = ch
	cell.FG = render.Over(c, cell.BG)
	cell.Bold = false
}

// FillText implements render.Surface.
func (s *Surface) FillText(text string, x, y float64, f render.Font, c color.NRGBA) {
	row := int(math.Floor(y / s.cellH()))
	if row < 0 || row >= s.rows {
		return
	}
	runes := []rune(text)
	start := int(math.Floor(x/s.cellW())) - len(runes)/2
	for i, ch := range runes {
		col := start + i
		if col < 0 || col >= s.cols {
			continue
		}
		cell := &s.cells[row*s.cols+col]
		cell.Rune = ch
		cell.FG = render.Over(c, cell.BG)
		cell.Bold = f.Bold
	}
}

// span returns the inclusive range of cells whose centers lie in
// [pos, pos+length). A rectangle that covers no center still claims the
// cell containing its own center.
func span(pos, length, size float64, n int) (lo, hi int, ok bool) {
	lo = int(math.Ceil(pos/size - 0.5))
	hi = int(math.Ceil((pos+length)/size-0.5)) - 1
	if hi < lo {
		lo = int(math.Floor((pos + length/2) / size))
		hi = lo
	}
	lo = max(lo, 0)
	hi = min(hi, n-1)
	return lo, hi, lo <= hi
}

// Plain returns the grid as text without colors.
func (s *Surface) Plain() string {
	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < s.cols; col++ {
			b.WriteRune(s.cells[row*s.cols+col].Rune)
		}
	}
	return b.String()
}

// String renders the grid with terminal colors. Runs of identically styled
// cells share one lipgloss style.
func (s *Surface) String() string {
	var b strings.Builder
	for row := 0; row < s.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		var cur Cell
		flush := func() {
			if len(run) == 0 {
				return
			}
			b.WriteString(styleFor(cur).Render(string(run)))
			run = run[:0]
		}
		for col := 0; col < s.cols; col++ {
			cell := s.cells[row*s.cols+col]
			if len(run) > 0 && (cell.FG != cur.FG || cell.BG != cur.BG || cell.Bold != cur.Bold) {
				flush()
			}
			cur = cell
			run = append(run, cell.Rune)
		}
		flush()
	}
	return b.String()
}

func styleFor(c Cell) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(render.Hex(c.FG))).
		Background(lipgloss.Color(render.Hex(c.BG))).
		Bold(c.Bold)
}

var _ render.Surface = (*Surface)(nil)
