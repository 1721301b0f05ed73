package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"slices"

	"github.com/matzehuels/siteview/pkg/site"
)

// OpKind identifies a recorded drawing operation.
type OpKind string

const (
	OpFill   OpKind = "fill"
	OpStroke OpKind = "stroke"
	OpText   OpKind = "text"
)

// Op is one drawing operation currently visible on a Recorder.
type Op struct {
	Kind  OpKind
	Rect  site.Rect   // fill, stroke
	Color color.NRGBA // fill color, stroke color or text color
	Width float64     // stroke
	Dash  []float64   // stroke
	Text  string      // text
	X, Y  float64     // text anchor (center)
	Font  Font        // text
}

// MarshalJSON encodes the op with hex colors and only the fields its kind uses.
func (o Op) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"kind":    o.Kind,
		"color":   Hex(o.Color),
		"opacity": Opacity(o.Color),
	}
	switch o.Kind {
	case OpFill:
		out["rect"] = o.Rect
	case OpStroke:
		out["rect"] = o.Rect
		out["width"] = o.Width
		if len(o.Dash) > 0 {
			out["dash"] = o.Dash
		}
	case OpText:
		out["text"] = o.Text
		out["x"] = o.X
		out["y"] = o.Y
		out["size"] = o.Font.Size
		out["bold"] = o.Font.Bold
	}
	return json.Marshal(out)
}

// String returns a compact description, handy in test failures.
func (o Op) String() string {
	switch o.Kind {
	case OpText:
		return fmt.Sprintf("text %q @(%g,%g) %s", o.Text, o.X, o.Y, Hex(o.Color))
	default:
		r := o.Rect
		return fmt.Sprintf("%s (%g,%g,%g,%g) %s", o.Kind, r.X, r.Y, r.W, r.H, Hex(o.Color))
	}
}

// Recorder is a Surface that keeps the current display list in memory.
// Clear discards all recorded operations.
type Recorder struct {
	ops    []Op
	clears int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Clear implements Surface.
func (r *Recorder) Clear() {
	r.ops = r.ops[:0]
	r.clears++
}

// FillRect implements Surface.
func (r *Recorder) FillRect(rect site.Rect, c color.NRGBA) {
	r.ops = append(r.ops, Op{Kind: OpFill, Rect: rect, Color: c})
}

// StrokeRect implements Surface.
func (r *Recorder) StrokeRect(rect site.Rect, s Stroke) {
	r.ops = append(r.ops, Op{
		Kind:  OpStroke,
		Rect:  rect,
		Color: s.Color,
		Width: s.Width,
		Dash:  slices.Clone(s.Dash),
	})
}

// FillText implements Surface.
func (r *Recorder) FillText(text string, x, y float64, f Font, c color.NRGBA) {
	r.ops = append(r.ops, Op{Kind: OpText, Text: text, X: x, Y: y, Font: f, Color: c})
}

// Ops returns a copy of the visible operations in draw order.
func (r *Recorder) Ops() []Op {
	return slices.Clone(r.ops)
}

// Clears returns how many times the surface has been cleared.
func (r *Recorder) Clears() int {
	return r.clears
}

// Fills returns the filled rectangles in draw order.
func (r *Recorder) Fills() []Op {
	return r.filter(OpFill)
}

// Texts returns the drawn labels in draw order.
func (r *Recorder) Texts() []Op {
	return r.filter(OpText)
}

func (r *Recorder) filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// MarshalJSON encodes the display list.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	ops := r.ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(map[string]any{
		"width":  site.CanvasWidth,
		"height": site.CanvasHeight,
		"ops":    ops,
	})
}

var _ Surface = (*Recorder)(nil)
