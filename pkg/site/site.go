// Package site defines the fixed physical site and the mapping from site-space
// meters onto drawing-surface pixels.
//
// # Coordinate Spaces
//
// Site-space is a 200×140 meter rectangle. Drawing-space is an 800×560 pixel
// canvas. Both use a top-left origin with X growing to the right and Y growing
// downward, so the mapping is a single uniform scale with no axis inversion:
//
//	px := site.ToPixels(20) // 80
//
// The generation service places buildings in the same top-left convention, so
// no Cartesian Y flip is applied anywhere.
package site

const (
	// WidthM is the site width in meters.
	WidthM = 200.0

	// HeightM is the site height in meters.
	HeightM = 140.0

	// CanvasWidth is the drawing surface width in pixels.
	CanvasWidth = 800.0

	// CanvasHeight is the drawing surface height in pixels.
	CanvasHeight = 560.0

	// Scale is the number of pixels per meter, applied identically to both axes.
	Scale = CanvasWidth / WidthM

	// SetbackM is the boundary setback drawn for reference on every side.
	SetbackM = 10.0

	// PlazaSizeM is the edge length of the square central plaza.
	PlazaSizeM = 40.0
)

// Rect is an axis-aligned rectangle anchored at its top-left corner.
// The unit depends on context: meters in site-space, pixels in drawing-space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// ToPixels converts a site-space length or position in meters to pixels.
func ToPixels(meters float64) float64 {
	return meters * Scale
}

// MapRect converts each of the rectangle's four fields from meters to pixels.
func MapRect(r Rect) Rect {
	return Rect{
		X: ToPixels(r.X),
		Y: ToPixels(r.Y),
		W: ToPixels(r.W),
		H: ToPixels(r.H),
	}
}

// Bounds returns the whole site in site-space.
func Bounds() Rect {
	return Rect{W: WidthM, H: HeightM}
}

// Canvas returns the whole drawing surface in pixels.
func Canvas() Rect {
	return Rect{W: CanvasWidth, H: CanvasHeight}
}

// SetbackRect returns the setback boundary in site-space.
func SetbackRect() Rect {
	return Rect{
		X: SetbackM,
		Y: SetbackM,
		W: WidthM - 2*SetbackM,
		H: HeightM - 2*SetbackM,
	}
}

// PlazaRect returns the central plaza in site-space.
func PlazaRect() Rect {
	return Rect{
		X: (WidthM - PlazaSizeM) / 2,
		Y: (HeightM - PlazaSizeM) / 2,
		W: PlazaSizeM,
		H: PlazaSizeM,
	}
}
