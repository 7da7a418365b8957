package geom

import "math"

// Transform is the canvas pan/zoom state, the affine matrix
// [Scale, 0, 0, Scale, TranslateX, TranslateY].
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity returns the transform of an unpanned, unzoomed canvas.
func Identity() Transform {
	return Transform{Scale: 1}
}

// TransformFromMatrix builds a Transform from a CSS-style 2D matrix.
// Shear components are ignored; the canvas only pans and zooms uniformly.
func TransformFromMatrix(m [6]float64) Transform {
	return Transform{Scale: m[0], TranslateX: m[4], TranslateY: m[5]}
}

// Matrix returns the transform as [a, b, c, d, e, f].
func (t Transform) Matrix() [6]float64 {
	s := t.scale()
	return [6]float64{s, 0, 0, s, t.TranslateX, t.TranslateY}
}

// scale returns a usable scale factor. Non-positive or NaN scales map to 1.
func (t Transform) scale() float64 {
	if t.Scale <= 0 || math.IsNaN(t.Scale) || math.IsInf(t.Scale, 0) {
		return 1
	}
	return t.Scale
}

// ScreenToLogical maps a pointer position to canvas logical coordinates.
// origin is the canvas element's bounding box in screen space.
//
// Callers recompute this on every pointer event: the transform may change
// while a drag is in progress.
func ScreenToLogical(pointer Point, origin Rect, t Transform) Point {
	s := t.scale()
	return Point{
		X: (pointer.X - origin.X - t.TranslateX) / s,
		Y: (pointer.Y - origin.Y - t.TranslateY) / s,
	}
}

// LogicalToScreen is the inverse of ScreenToLogical.
func LogicalToScreen(p Point, origin Rect, t Transform) Point {
	s := t.scale()
	return Point{
		X: p.X*s + t.TranslateX + origin.X,
		Y: p.Y*s + t.TranslateY + origin.Y,
	}
}

// WorkArea is the logical extent positions are clamped to.
type WorkArea struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// DefaultWorkArea is generous enough for any realistic stack.
var DefaultWorkArea = WorkArea{MinX: -100, MinY: -100, MaxX: 2000, MaxY: 1500}

// ClampToWorkArea clamps p into bounds.
func ClampToWorkArea(p Point, bounds WorkArea) Point {
	return Point{
		X: math.Min(math.Max(p.X, bounds.MinX), bounds.MaxX),
		Y: math.Min(math.Max(p.Y, bounds.MinY), bounds.MaxY),
	}
}
