// Package browser holds the candidate layouts of one generation request and
// the operator's current selection.
//
// # State
//
// A Browser starts [Empty]. The first non-empty [Browser.SetCandidates] moves
// it to [Browsing], where exactly one candidate is selected. There is no way
// back to Empty: empty results are ignored rather than clearing the display.
//
// # Controls
//
// The page selector is a list of [Control] values, one per candidate, labeled
// 1..N. A control does not hold a callback; it carries the [SelectIntent] that
// pressing it would emit, and the owner feeds that intent to
// [Browser.Dispatch]:
//
//	for _, c := range b.Controls() {
//	    if clicked(c) {
//	        b.Dispatch(c.Intent)
//	    }
//	}
//
// A Browser is not safe for concurrent use. All calls must come from the
// goroutine that owns the display.
package browser

import (
	"slices"
	"strconv"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/layout"
)

// State is the browser's lifecycle state.
type State int

const (
	// Empty means no candidates have been received yet.
	Empty State = iota
	// Browsing means at least one candidate is held and one is selected.
	Browsing
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Browsing:
		return "browsing"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Renderer draws one layout. *render.Renderer satisfies it.
type Renderer interface {
	Render(l *layout.Layout)
}

// Intent is an operator action the browser understands.
type Intent interface {
	intent()
}

// SelectIntent asks the browser to show the candidate at Index (0-based).
type SelectIntent struct {
	Index int `json:"index"`
}

func (SelectIntent) intent() {}

// Control is one page-selector button.
type Control struct {
	Label  string       `json:"label"`
	Active bool         `json:"active"`
	Intent SelectIntent `json:"intent"`
}

// Browser is the pagination state for one candidate list.
type Browser struct {
	renderer   Renderer
	candidates []layout.Layout
	selected   int
	controls   []Control
}

// New returns an empty browser that draws through r.
func New(r Renderer) *Browser {
	return &Browser{renderer: r}
}

// SetCandidates replaces the candidate list, selects the first entry and
// renders it. An empty or nil list is ignored: nothing changes and false is
// returned.
func (b *Browser) SetCandidates(list []layout.Layout) bool {
	if len(list) == 0 {
		return false
	}
	b.candidates = slices.Clone(list)
	b.show(0)
	return true
}

// Select shows the candidate at index i. Indexes outside the candidate list
// return an INVALID_INPUT error and leave the browser unchanged.
func (b *Browser) Select(i int) error {
	if i < 0 || i >= len(b.candidates) {
		return errors.New(errors.ErrCodeInvalidInput, "no layout at position %d (have %d)", i+1, len(b.candidates))
	}
	b.show(i)
	return nil
}

// Dispatch applies an intent.
func (b *Browser) Dispatch(in Intent) error {
	switch in := in.(type) {
	case SelectIntent:
		return b.Select(in.Index)
	case *SelectIntent:
		if in == nil {
			return errors.New(errors.ErrCodeInvalidInput, "nil intent")
		}
		return b.Select(in.Index)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unsupported intent %T", in)
	}
}

func (b *Browser) show(i int) {
	b.selected = i
	b.controls = make([]Control, len(b.candidates))
	for j := range b.candidates {
		b.controls[j] = Control{
			Label:  strconv.Itoa(j + 1),
			Active: j == i,
			Intent: SelectIntent{Index: j},
		}
	}
	if b.renderer != nil {
		b.renderer.Render(&b.candidates[i])
	}
}

// State reports whether any candidates are held.
func (b *Browser) State() State {
	if len(b.candidates) == 0 {
		return Empty
	}
	return Browsing
}

// Len returns the number of candidates.
func (b *Browser) Len() int {
	return len(b.candidates)
}

// Candidates returns a copy of the candidate list.
func (b *Browser) Candidates() []layout.Layout {
	return slices.Clone(b.candidates)
}

// Selected returns the selected layout and its index. ok is false while the
// browser is empty.
func (b *Browser) Selected() (l layout.Layout, index int, ok bool) {
	if len(b.candidates) == 0 {
		return layout.Layout{}, 0, false
	}
	return b.candidates[b.selected], b.selected, true
}

// Controls returns a copy of the page-selector controls.
func (b *Browser) Controls() []Control {
	return slices.Clone(b.controls)
}
