package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/stackcanvas/pkg/cache"
	"github.com/matzehuels/stackcanvas/pkg/editor"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/history"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/store"
)

func fixture() stack.State {
	box, _ := stack.NewContainer(stack.DockerTemplate(), geom.Point{X: 400, Y: 100})
	box.ID = "box"
	return stack.State{
		Nodes: []stack.Component{
			{ID: "api", Name: "API", Category: stack.CategoryBackend,
				Bounds:    geom.Rect{Width: 160, Height: 60},
				Resources: &resources.Requirements{CPU: "1 core", Memory: "512MB"}},
		},
		Containers: []stack.Container{box},
	}
}

type testServer struct {
	*httptest.Server
	store *store.MemoryStore
}

func newTestServer(t *testing.T, reg *prometheus.Registry) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := Config{
		Store: st,
		Cache: cache.NewMemoryCache(),
		EditorOptions: []editor.Option{
			editor.WithScheduler(history.NewVirtualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
		},
	}
	if reg != nil {
		cfg.Gatherer = reg
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) create(t *testing.T) {
	t.Helper()
	state := fixture()
	var resp stackResponse
	code := ts.do(t, http.MethodPost, "/api/stacks", createRequest{ID: "shop", Name: "Shop", State: &state}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", code)
	}
	if resp.ID != "shop" || resp.State.Name != "Shop" || resp.Dirty {
		t.Fatalf("create response = %+v", resp)
	}
}

func TestDragThroughAPI(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.create(t)

	var ev eventsResponse
	code := ts.do(t, http.MethodPost, "/api/stacks/shop/events", eventsRequest{Events: []eventRequest{
		{Type: "down", NodeID: "api", X: 10, Y: 10},
		{Type: "move", X: 200, Y: 100},
		{Type: "up", X: 460, Y: 160},
	}}, &ev)
	if code != http.StatusOK {
		t.Fatalf("events status = %d", code)
	}
	if ev.Result == nil || ev.Result.Outcome != observability.DropAbsorbed || ev.Result.Target != "box" {
		t.Fatalf("result = %+v, want absorbed into box", ev.Result)
	}
	if ev.Drag.Phase != editor.PhaseDropped {
		t.Errorf("phase = %v, want dropped", ev.Drag.Phase)
	}

	var c containerResponse
	if code := ts.do(t, http.MethodGet, "/api/stacks/shop/containers/box", nil, &c); code != http.StatusOK {
		t.Fatalf("container status = %d", code)
	}
	if len(c.Container.Members) != 1 || c.Display["cpu"] != "1.2 cores" {
		t.Errorf("container = %d members, cpu %s", len(c.Container.Members), c.Display["cpu"])
	}
	if strings.Join(c.Container.Ports, ",") != "3000,5000" {
		t.Errorf("ports = %v", c.Container.Ports)
	}

	var h historyResponse
	if code := ts.do(t, http.MethodPost, "/api/stacks/shop/undo", nil, &h); code != http.StatusOK {
		t.Fatalf("undo status = %d", code)
	}
	if !h.Moved || len(h.State.Nodes) != 1 || len(h.State.Containers[0].Members) != 0 {
		t.Errorf("undo = %+v, want api back on the canvas", h)
	}
	if code := ts.do(t, http.MethodPost, "/api/stacks/shop/redo", nil, &h); code != http.StatusOK || !h.Moved {
		t.Errorf("redo status = %d moved = %v", code, h.Moved)
	}
}

func TestSaveAndReload(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.create(t)

	var added map[string]string
	code := ts.do(t, http.MethodPost, "/api/stacks/shop/components",
		componentRequest{Name: "Postgres", Category: stack.CategoryDatabase, X: 0, Y: 300}, &added)
	if code != http.StatusCreated || added["id"] == "" {
		t.Fatalf("add component status = %d, body %v", code, added)
	}

	var snap stackResponse
	ts.do(t, http.MethodGet, "/api/stacks/shop", nil, &snap)
	if !snap.Dirty {
		t.Error("session should be dirty after an edit")
	}

	var doc stack.Document
	if code := ts.do(t, http.MethodPut, "/api/stacks/shop", nil, &doc); code != http.StatusOK {
		t.Fatalf("save status = %d", code)
	}
	stored, err := ts.store.Get(context.Background(), "shop")
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if len(stored.State.Nodes) != 2 {
		t.Errorf("stored nodes = %d, want 2", len(stored.State.Nodes))
	}

	ts.do(t, http.MethodGet, "/api/stacks/shop", nil, &snap)
	if snap.Dirty {
		t.Error("session should be clean after save")
	}

	var list []store.Summary
	ts.do(t, http.MethodGet, "/api/stacks", nil, &list)
	if len(list) != 1 || list[0].Nodes != 2 {
		t.Errorf("list = %+v", list)
	}

	if code := ts.do(t, http.MethodDelete, "/api/stacks/shop", nil, nil); code != http.StatusNoContent {
		t.Errorf("delete status = %d", code)
	}
	if code := ts.do(t, http.MethodGet, "/api/stacks/shop", nil, nil); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", code)
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.create(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errs.Code
	}{
		{"unknown stack", http.MethodGet, "/api/stacks/nope", nil, http.StatusNotFound, errs.ErrCodeSessionNotFound},
		{"move while idle", http.MethodPost, "/api/stacks/shop/events",
			eventsRequest{Events: []eventRequest{{Type: "move", X: 1, Y: 1}}}, http.StatusBadRequest, errs.ErrCodeInvalidEvent},
		{"unknown event type", http.MethodPost, "/api/stacks/shop/events",
			eventsRequest{Events: []eventRequest{{Type: "wiggle"}}}, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"unknown template", http.MethodPost, "/api/stacks/shop/containers",
			containerRequest{Template: "nope"}, http.StatusNotFound, errs.ErrCodeTemplateNotFound},
		{"unknown node", http.MethodDelete, "/api/stacks/shop/nodes/ghost", nil, http.StatusNotFound, errs.ErrCodeNodeNotFound},
		{"bad mode", http.MethodPut, "/api/stacks/shop/containers/box/resources",
			map[string]string{"mode": "turbo"}, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"self loop", http.MethodPost, "/api/stacks/shop/connections",
			connectRequest{From: "api", To: "api"}, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"duplicate stack", http.MethodPost, "/api/stacks",
			createRequest{ID: "shop", Name: "again"}, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"unknown export", http.MethodGet, "/api/stacks/shop/export/helm", nil, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			status := ts.do(t, tt.method, tt.path, tt.body, &body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (%+v)", status, tt.status, body)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestManualResources(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.create(t)

	var c containerResponse
	code := ts.do(t, http.MethodPut, "/api/stacks/shop/containers/box/resources",
		resourcesRequest{Mode: resources.ModeManual, CPU: "2 cores", Memory: "1GB"}, &c)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if c.Display["cpu"] != "2 cores" || c.Display["memory"] != "1.0GB" {
		t.Errorf("display = %v", c.Display)
	}
	if c.Container.ResourceMode != resources.ModeManual {
		t.Errorf("mode = %s", c.Container.ResourceMode)
	}
}

func TestExportAndTemplates(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.create(t)

	resp, err := ts.Client().Get(ts.URL + "/api/stacks/shop/export/compose")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "services:") {
		t.Errorf("compose export = %d %s", resp.StatusCode, data)
	}

	var templates []stack.Template
	ts.do(t, http.MethodGet, "/api/templates", nil, &templates)
	if len(templates) != 2 {
		t.Errorf("templates = %d, want the two built-ins", len(templates))
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.SetHTTPHooks(observability.NewPrometheusHooks(reg))
	defer observability.Reset()

	ts := newTestServer(t, reg)

	var health healthResponse
	if code := ts.do(t, http.MethodGet, "/healthz", nil, &health); code != http.StatusOK || health.Status != "ok" || health.Build.Version == "" {
		t.Fatalf("healthz = %d %v", code, health)
	}

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(data), `stackcanvas_http_request_duration_seconds_count{code="200",method="GET",route="/healthz"} 1`) {
		t.Errorf("metrics missing healthz request:\n%s", data)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Config{}); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("New without store err = %v", err)
	}
}
