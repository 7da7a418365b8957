package geom

import (
	"math"
	"testing"
)

func TestIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 25, Width: 100, Height: 100}

	got := a.Intersect(b)
	want := Rect{X: 50, Y: 25, Width: 50, Height: 75}
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	disjoint := a.Intersect(Rect{X: 500, Y: 500, Width: 10, Height: 10})
	if !disjoint.Empty() || disjoint.Area() != 0 {
		t.Errorf("disjoint Intersect = %+v, want empty", disjoint)
	}
}

func TestIsContainedThreshold(t *testing.T) {
	container := Rect{X: 0, Y: 0, Width: 200, Height: 200}

	tests := []struct {
		name   string
		moving Rect
		want   bool
	}{
		{"fully inside", Rect{X: 10, Y: 10, Width: 100, Height: 100}, true},
		{"exactly 50%", Rect{X: 150, Y: 0, Width: 100, Height: 100}, true},
		{"49%", Rect{X: 151, Y: 0, Width: 100, Height: 100}, false},
		{"corner 25%", Rect{X: 150, Y: 150, Width: 100, Height: 100}, false},
		{"outside", Rect{X: 300, Y: 300, Width: 50, Height: 50}, false},
		{"zero-area moving", Rect{X: 10, Y: 10, Width: 0, Height: 50}, false},
		{"larger than container", Rect{X: -100, Y: -100, Width: 400, Height: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContained(tt.moving, container); got != tt.want {
				t.Errorf("IsContained(%+v) = %v, want %v (ratio %v)",
					tt.moving, got, tt.want, OverlapRatio(tt.moving, container))
			}
		})
	}
}

func TestIsContainedZeroAreaContainer(t *testing.T) {
	moving := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if IsContained(moving, Rect{X: 0, Y: 0, Width: 0, Height: 0}) {
		t.Error("zero-area container must not contain anything")
	}
}

func TestFindTargetFirstMatch(t *testing.T) {
	moving := Rect{X: 100, Y: 100, Width: 50, Height: 50}
	zones := []DropZone{
		{ID: "far", Bounds: Rect{X: 1000, Y: 1000, Width: 100, Height: 100}},
		{ID: "big", Bounds: Rect{X: 0, Y: 0, Width: 800, Height: 800}},
		{ID: "tight", Bounds: Rect{X: 90, Y: 90, Width: 80, Height: 80}},
	}

	id, ok := FindTarget(moving, zones)
	if !ok || id != "big" {
		t.Errorf("FindTarget = %q, %v, want big, true", id, ok)
	}

	// Order decides between overlapping zones.
	zones[1], zones[2] = zones[2], zones[1]
	if id, _ := FindTarget(moving, zones); id != "tight" {
		t.Errorf("FindTarget after reorder = %q, want tight", id)
	}

	if _, ok := FindTarget(moving, zones[:1]); ok {
		t.Error("FindTarget should miss when nothing overlaps")
	}
	if _, ok := FindTarget(moving, nil); ok {
		t.Error("FindTarget with no zones should miss")
	}
}

func TestScreenToLogical(t *testing.T) {
	origin := Rect{X: 20, Y: 60, Width: 1200, Height: 800}

	tests := []struct {
		name    string
		pointer Point
		tr      Transform
		want    Point
	}{
		{"identity", Point{X: 120, Y: 160}, Identity(), Point{X: 100, Y: 100}},
		{"zoomed", Point{X: 220, Y: 260}, Transform{Scale: 2}, Point{X: 100, Y: 100}},
		{"panned", Point{X: 170, Y: 130}, Transform{Scale: 1, TranslateX: 50, TranslateY: -30}, Point{X: 100, Y: 100}},
		{"zoomed and panned", Point{X: 100, Y: 90}, Transform{Scale: 0.5, TranslateX: 30, TranslateY: -20}, Point{X: 100, Y: 100}},
		{"zero scale is identity", Point{X: 120, Y: 160}, Transform{Scale: 0}, Point{X: 100, Y: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScreenToLogical(tt.pointer, origin, tt.tr)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("ScreenToLogical = %+v, want %+v", got, tt.want)
			}

			back := LogicalToScreen(got, origin, tt.tr)
			if math.Abs(back.X-tt.pointer.X) > 1e-9 || math.Abs(back.Y-tt.pointer.Y) > 1e-9 {
				t.Errorf("LogicalToScreen round trip = %+v, want %+v", back, tt.pointer)
			}
		})
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := TransformFromMatrix([6]float64{1.5, 0, 0, 1.5, 40, -10})
	if tr.Scale != 1.5 || tr.TranslateX != 40 || tr.TranslateY != -10 {
		t.Errorf("TransformFromMatrix = %+v", tr)
	}
	if m := tr.Matrix(); m != [6]float64{1.5, 0, 0, 1.5, 40, -10} {
		t.Errorf("Matrix = %v", m)
	}
}

func TestClampToWorkArea(t *testing.T) {
	tests := []struct {
		in, want Point
	}{
		{Point{X: 500, Y: 500}, Point{X: 500, Y: 500}},
		{Point{X: -500, Y: 200}, Point{X: -100, Y: 200}},
		{Point{X: 5000, Y: 5000}, Point{X: 2000, Y: 1500}},
		{Point{X: 10, Y: -101}, Point{X: 10, Y: -100}},
	}

	for _, tt := range tests {
		if got := ClampToWorkArea(tt.in, DefaultWorkArea); got != tt.want {
			t.Errorf("ClampToWorkArea(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
