// Package layout defines the candidate layouts returned by the generation
// service.
//
// Layouts are plain values: once decoded they are never mutated. The summary
// fields (TowersA, TowersB, BuiltArea) are precomputed by the service and are
// trusted verbatim; nothing in siteview re-counts buildings or sums areas.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/siteview/pkg/site"
)

// Type is the closed set of building variants.
type Type uint8

const (
	// TypeA is the larger tower variant.
	TypeA Type = iota + 1
	// TypeB is the smaller tower variant.
	TypeB
)

// Types lists every valid building type in display order.
var Types = []Type{TypeA, TypeB}

// String returns the single-letter code used on the wire and as the glyph.
func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeB:
		return "B"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the enumerated variants.
func (t Type) Valid() bool {
	return t == TypeA || t == TypeB
}

// ParseType converts a wire code into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "A":
		return TypeA, nil
	case "B":
		return TypeB, nil
	default:
		return 0, fmt.Errorf("unknown building type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown building type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Building is one rectangular footprint in site-space meters.
type Building struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Type Type    `json:"type"`
}

// Rect returns the building footprint in site-space.
func (b Building) Rect() site.Rect {
	return site.Rect{X: b.X, Y: b.Y, W: b.W, H: b.H}
}

// Rules mirrors the per-rule compliance flags reported by the generation
// service. They are informational only.
type Rules struct {
	SiteBoundary    bool `json:"siteBoundary"`
	MinDistance     bool `json:"minDistance"`
	BoundarySetback bool `json:"boundarySetback"`
	NeighbourMix    bool `json:"neighbourMix"`
	PlazaClear      bool `json:"plazaClear"`
}

// Layout is one complete candidate arrangement plus its summary statistics.
// Buildings are drawn in slice order, so later entries paint over earlier ones.
type Layout struct {
	ID        int        `json:"id,omitempty"`
	Buildings []Building `json:"buildings"`
	TowersA   int        `json:"towersA"`
	TowersB   int        `json:"towersB"`
	BuiltArea float64    `json:"builtArea"`
	Rules     *Rules     `json:"rules,omitempty"`
}

// Title returns a display title, falling back to the 1-based position when the
// service did not assign an ID.
func (l Layout) Title(position int) string {
	if l.ID > 0 {
		return fmt.Sprintf("Layout #%d", l.ID)
	}
	return fmt.Sprintf("Layout #%d", position+1)
}

// Response is the payload returned by the generation endpoint.
// A missing or empty Layouts field means "nothing to show".
type Response struct {
	Layouts []Layout `json:"layouts"`
}

// Decode reads a generation response from r.
func Decode(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DecodeBytes parses a generation response from data.
func DecodeBytes(data []byte) (*Response, error) {
	return Decode(bytes.NewReader(data))
}
