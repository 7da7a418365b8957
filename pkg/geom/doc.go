// Package geom provides the canvas geometry used during drag gestures.
//
// Two concerns live here:
//
//   - Containment: [OverlapRatio], [IsContained] and [FindTarget] decide
//     whether a rectangle being dragged should be absorbed by a container.
//     A rectangle counts as contained once at least [ContainmentThreshold]
//     (50%) of its own area lies inside the container.
//   - Coordinate mapping: [ScreenToLogical] converts pointer coordinates into
//     canvas logical space given the canvas's pan/zoom [Transform], and
//     [ClampToWorkArea] keeps positions inside a reachable extent.
//
// All functions are pure. Degenerate input (zero-area rectangles, a zero
// scale) never panics; it yields "no containment" or an identity mapping.
package geom
