package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stackcanvas/pkg/cache"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

func testState() stack.State {
	box, _ := stack.NewContainer(stack.DockerTemplate(), geom.Point{X: 100, Y: 50},
		stack.Component{ID: "api", Name: "API", Technology: "Go", Category: stack.CategoryBackend,
			Resources: &resources.Requirements{CPU: "500m", Memory: "512MB"}},
	)
	box.ID = "box"
	box.Name = "backend"
	return stack.State{
		Name:       "shop",
		Nodes:      []stack.Component{{ID: "web", Name: "Web", Category: stack.CategoryFrontend}},
		Containers: []stack.Container{box},
		Connections: []stack.Connection{
			{ID: "c1", From: "web", To: "api", Type: stack.ConnectionDataFlow, Label: "REST"},
			{ID: "c2", From: "web", To: "box"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testState(), Options{Resources: true})

	want := []string{
		"digraph G {",
		`label="shop";`,
		`subgraph "cluster_box" {`,
		`label="backend (docker)\nports: 3000, 5000\n600m / 615MB / 0GB / 0Mbps";`,
		`"api" [label="API\nGo\n500m / 512MB"`,
		`"web" [label="Web", tooltip="frontend"];`,
		`"web" -> "api" [style=dashed, label="REST"];`,
		`"web" -> "anchor_box" [style=solid, lhead="cluster_box"];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q\n%s", w, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should close the graph")
	}
}

func TestToDOTPositions(t *testing.T) {
	s := stack.State{Nodes: []stack.Component{{ID: "a", Name: "A", Bounds: geom.Rect{X: 10, Y: 20}}}}

	if dot := ToDOT(s, Options{}); strings.Contains(dot, "pos=") {
		t.Error("positions should be omitted by default")
	}
	if dot := ToDOT(s, Options{Positions: true}); !strings.Contains(dot, `pos="10,-20!"`) {
		t.Errorf("pinned DOT = %s", dot)
	}
}

func TestToDOTDeterministic(t *testing.T) {
	s := testState()
	if ToDOT(s, Options{}) != ToDOT(s.Clone(), Options{}) {
		t.Error("ToDOT should be deterministic")
	}
}

func TestRendererCaches(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	r := NewRenderer(mem)

	calls := 0
	r.render = func(_ context.Context, dot string) ([]byte, error) {
		calls++
		return []byte("<svg/>"), nil
	}

	s := testState()
	for i := 0; i < 3; i++ {
		svg, err := r.SVG(ctx, s, Options{})
		if err != nil {
			t.Fatalf("SVG: %v", err)
		}
		if string(svg) != "<svg/>" {
			t.Errorf("SVG = %q", svg)
		}
	}
	if calls != 1 {
		t.Errorf("render calls = %d, want 1", calls)
	}
	if mem.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", mem.Len())
	}

	s.Name = "changed"
	if _, err := r.SVG(ctx, s, Options{}); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if calls != 2 {
		t.Errorf("render calls = %d, want 2 after an edit", calls)
	}
}

func TestRendererWithoutCache(t *testing.T) {
	r := NewRenderer(nil)
	calls := 0
	r.render = func(context.Context, string) ([]byte, error) {
		calls++
		return []byte("<svg/>"), nil
	}
	for i := 0; i < 2; i++ {
		if _, err := r.SVG(context.Background(), testState(), Options{}); err != nil {
			t.Fatalf("SVG: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("render calls = %d, want 2", calls)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if plain := []byte("<svg/>"); string(normalizeViewBox(plain)) != "<svg/>" {
		t.Error("SVG without viewBox should be unchanged")
	}
}
