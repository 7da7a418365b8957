package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackcanvas/pkg/cache"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container instead of carrying Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// DefaultTTL bounds how long rendered SVGs stay cached.
const DefaultTTL = 24 * time.Hour

// Renderer renders stacks to SVG through a cache.
type Renderer struct {
	cache  cache.Cache
	ttl    time.Duration
	render func(context.Context, string) ([]byte, error)
}

// NewRenderer creates a renderer backed by c. A nil cache disables caching.
func NewRenderer(c cache.Cache) *Renderer {
	return &Renderer{
		cache:  cache.Scoped(c, "svg:"),
		ttl:    DefaultTTL,
		render: RenderSVG,
	}
}

// SVG renders s, returning a cached result when the DOT source is unchanged.
// Cache failures fall through to a fresh render.
func (r *Renderer) SVG(ctx context.Context, s stack.State, opts Options) ([]byte, error) {
	dot := ToDOT(s, opts)
	key := cache.Hash([]byte(dot))
	hooks := observability.Cache()

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, "svg")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "svg")

	svg, err := r.render(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, svg, r.ttl); err == nil {
		hooks.OnCacheSet(ctx, "svg", len(svg))
	}
	return svg, nil
}
