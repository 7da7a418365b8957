package geom

// ContainmentThreshold is the minimum fraction of a moving rectangle's area
// that must overlap a container for the rectangle to count as inside it.
const ContainmentThreshold = 0.5

// DropZone is the projection of a container used while a drag is in flight.
type DropZone struct {
	ID     string
	Bounds Rect
}

// OverlapRatio returns the fraction of moving's area that lies inside container.
// A zero-area moving rectangle has ratio 0.
func OverlapRatio(moving, container Rect) float64 {
	area := moving.Area()
	if area == 0 {
		return 0
	}
	return moving.Intersect(container).Area() / area
}

// IsContained reports whether at least half of moving lies inside container.
func IsContained(moving, container Rect) bool {
	if container.Empty() {
		return false
	}
	return OverlapRatio(moving, container) >= ContainmentThreshold
}

// FindTarget returns the id of the first zone that contains moving.
//
// The scan is first-match in slice order, not best-match: when zones overlap
// each other the result depends on their order.
func FindTarget(moving Rect, zones []DropZone) (string, bool) {
	for _, z := range zones {
		if IsContained(moving, z.Bounds) {
			return z.ID, true
		}
	}
	return "", false
}
