// Package render draws a stack as a Graphviz diagram.
//
// # Overview
//
// [ToDOT] turns a [stack.State] into DOT source. Each container becomes a
// cluster subgraph labelled with its kind and displayed resource profile,
// free components are plain boxes, and connections become edges.
//
//	dot := render.ToDOT(state, render.Options{Resources: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Caching
//
// Graphviz layout dominates render time. A [Renderer] keys SVG output by the
// hash of its DOT input and serves repeated renders from a [cache.Cache]:
//
//	r := render.NewRenderer(cache.NewMemoryCache())
//	svg, err := r.SVG(ctx, state, render.Options{})
//
// [stack.State]: github.com/matzehuels/stackcanvas/pkg/stack#State
// [cache.Cache]: github.com/matzehuels/stackcanvas/pkg/cache#Cache
package render
