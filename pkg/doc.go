// Package pkg provides the core libraries for Stackcanvas stack composition.
//
// # Overview
//
// Stackcanvas lets users sketch a technology stack on a canvas and group its
// components into docker, kubernetes or custom containers. A container derives
// its size, ports, page layout and resource profile from the components dropped
// into it. The pkg directory is organized into four areas:
//
//  1. Quantities and geometry ([units], [geom], [resources], [pagination])
//  2. The document model ([stack]) and editing ([editor], [history])
//  3. Infrastructure ([store], [cache], [observability], [errors])
//  4. Output ([render], [export])
//
// # Architecture
//
// The typical data flow of an edit:
//
//	pointer events (screen coordinates)
//	         ↓
//	    [geom] package (viewport transform + overlap test)
//	         ↓
//	    [editor] package (drag state machine, membership)
//	         ↓
//	    [stack] package (container lifecycle, resource aggregation)
//	         ↓
//	    [history] package (debounced snapshots, undo/redo)
//	         ↓
//	    [store] / [render] / [export]
//
// # Quick Start
//
// Drop a component into a container and read the resulting profile:
//
//	import (
//	    "github.com/matzehuels/stackcanvas/pkg/editor"
//	    "github.com/matzehuels/stackcanvas/pkg/geom"
//	    "github.com/matzehuels/stackcanvas/pkg/stack"
//	)
//
//	// 1. Build a state with a docker container
//	box, _ := stack.NewContainer(stack.DockerTemplate(), geom.Point{X: 400, Y: 100})
//	s := stack.State{Name: "shop", Containers: []stack.Container{box}}
//
//	// 2. Open an editor and add a component
//	ed, _ := editor.New(s)
//	id, _ := ed.AddComponent(stack.Component{Name: "API", Category: stack.CategoryBackend})
//
//	// 3. Drag it into the container
//	res, _ := ed.Dispatch(
//	    editor.PointerDown{NodeID: id, X: 10, Y: 10},
//	    editor.PointerUp{X: 430, Y: 170},
//	)
//	fmt.Println(res.Outcome, res.Target)
//
// # Main Packages
//
// ## Quantities and Geometry
//
// [units] - Parsing and formatting of resource quantities ("500m", "1.5 cores",
// "2Gi", "100Mbps") in four dimensions: CPU, memory, storage and network.
//
// [geom] - Rectangles, viewport transforms and the overlap ratio that decides
// whether a dropped component lands in a container.
//
// [resources] - Aggregation of member requirements with the container
// overhead, the auto/manual display profile and manual limit checks.
//
// [pagination] - Items per page for a container height and page clamping.
//
// ## Document Model
//
// [stack] - Components, containers, connections and templates. Containers are
// values; every lifecycle function returns an updated copy.
//
// [editor] - The editing session: an event-driven drag state machine plus
// structural operations (add, duplicate, convert, delete, connect).
//
// [history] - Bounded undo/redo with debounced snapshots driven by an
// injectable scheduler, so tests and the simulate command run on a virtual
// clock.
//
// ## Infrastructure
//
// [store] - Document persistence with file, memory, Redis and MongoDB
// backends behind one interface.
//
// [cache] - Byte cache for rendered artifacts (file, memory and null).
//
// [observability] - Hook interfaces for editor, store, cache and HTTP events,
// with a Prometheus implementation.
//
// [errors] - Structured errors with machine-readable codes.
//
// ## Output
//
// [render] - Graphviz DOT generation with one cluster per container and SVG
// rendering.
//
// [export] - Kubernetes manifests and docker compose files derived from
// containers.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/editor/...    # Specific package
//	go test -run Example        # Examples only
//
// [units]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/units
// [geom]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/geom
// [resources]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/resources
// [pagination]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/pagination
// [stack]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/stack
// [editor]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/editor
// [history]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/history
// [store]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/errors
// [render]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/render
// [export]: https://pkg.go.dev/github.com/matzehuels/stackcanvas/pkg/export
package pkg
