package stack

import (
	"reflect"
	"testing"

	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

func comp(id string, cat Category, cpu, mem string) Component {
	c := Component{
		ID:       id,
		Name:     id,
		Category: cat,
		Bounds:   geom.Rect{Width: 160, Height: 60},
	}
	if cpu != "" || mem != "" {
		c.Resources = &resources.Requirements{CPU: cpu, Memory: mem}
	}
	return c
}

func TestDockerAbsorbsTwoMembers(t *testing.T) {
	c, rejected := NewContainer(DockerTemplate(), geom.Point{X: 10, Y: 20},
		comp("api", CategoryBackend, "1 core", "512MB"),
		comp("db", CategoryDatabase, "500m", "1GB"),
	)

	if len(rejected) != 0 {
		t.Fatalf("rejected = %v, want none", rejected)
	}
	if c.Bounds.Height != 360 {
		t.Errorf("Height = %v, want 360", c.Bounds.Height)
	}
	if got := units.Format(c.Resources.CPU); got != "1.8 cores" {
		t.Errorf("CPU = %q, want %q", got, "1.8 cores")
	}
	if got := units.Format(c.Resources.Memory); got != "1.9GB" {
		t.Errorf("Memory = %q, want %q", got, "1.9GB")
	}
	if !reflect.DeepEqual(c.Ports, []string{"3000", "5000"}) {
		t.Errorf("Ports = %v, want [3000 5000]", c.Ports)
	}
	if c.Bounds.X != 10 || c.Bounds.Y != 20 {
		t.Errorf("origin = (%v,%v), want (10,20)", c.Bounds.X, c.Bounds.Y)
	}
}

func TestEmptyContainerShowsBaseline(t *testing.T) {
	c, _ := NewContainer(DockerTemplate(), geom.Point{})
	if c.Bounds.Height != 300 {
		t.Errorf("Height = %v, want 300", c.Bounds.Height)
	}
	if c.Resources != resources.Baseline() {
		t.Errorf("Resources = %+v, want baseline", c.Resources)
	}
	if len(c.Ports) != 0 {
		t.Errorf("Ports = %v, want none before a serving member joins", c.Ports)
	}
}

func TestCanAccept(t *testing.T) {
	docker, _ := NewContainer(DockerTemplate(), geom.Point{})
	k8s, _ := NewContainer(KubernetesTemplate(), geom.Point{})
	custom, _ := NewContainer(Template{Name: "cache", Kind: KindCustom, Width: 400, Height: 300,
		Categories: []Category{CategoryDatabase}}, geom.Point{})
	open, _ := NewContainer(Template{Name: "any", Kind: KindCustom, Width: 400, Height: 300}, geom.Point{})

	tests := []struct {
		name string
		c    Container
		n    Node
		want bool
	}{
		{"docker frontend", docker, comp("a", CategoryFrontend, "", ""), true},
		{"docker mobile", docker, comp("a", CategoryMobile, "", ""), true},
		{"docker devops", docker, comp("a", CategoryDevOps, "", ""), false},
		{"docker ai", docker, comp("a", CategoryAI, "", ""), false},
		{"kubernetes devops", k8s, comp("a", CategoryDevOps, "", ""), true},
		{"kubernetes uncategorized", k8s, comp("a", "", "", ""), true},
		{"custom allow-list hit", custom, comp("a", CategoryDatabase, "", ""), true},
		{"custom allow-list miss", custom, comp("a", CategoryFrontend, "", ""), false},
		{"custom without list", open, comp("a", CategoryTool, "", ""), true},
		{"container into docker", docker, k8s, false},
		{"container into kubernetes", k8s, docker, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccept(tt.c, tt.n); got != tt.want {
				t.Errorf("CanAccept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateMembershipRejects(t *testing.T) {
	c, _ := NewContainer(DockerTemplate(), geom.Point{})
	c, rejected := UpdateMembership(c, []Component{
		comp("web", CategoryFrontend, "", ""),
		comp("ci", CategoryDevOps, "", ""),
		comp("web", CategoryFrontend, "", ""),
	})

	if len(c.Members) != 1 || c.Members[0].ID != "web" {
		t.Errorf("Members = %v, want [web]", c.Members)
	}
	if len(rejected) != 1 || rejected[0].ID != "ci" {
		t.Errorf("rejected = %v, want [ci]", rejected)
	}
}

func TestUpdateMembershipDoesNotAlias(t *testing.T) {
	c, _ := NewContainer(DockerTemplate(), geom.Point{})
	members := []Component{comp("api", CategoryBackend, "1", "1GB")}
	updated, _ := UpdateMembership(c, members)

	members[0].Resources.CPU = "8"
	if updated.Members[0].Resources.CPU != "1" {
		t.Error("UpdateMembership should copy member resources")
	}
	if len(c.Members) != 0 {
		t.Error("UpdateMembership should not modify its input container")
	}
}

func TestHeightShrinksToMinimum(t *testing.T) {
	c, _ := NewContainer(DockerTemplate(), geom.Point{},
		comp("a", CategoryBackend, "", ""),
		comp("b", CategoryBackend, "", ""),
		comp("c", CategoryBackend, "", ""),
	)
	if c.Bounds.Height != 440 {
		t.Fatalf("Height = %v, want 440", c.Bounds.Height)
	}
	c, _ = UpdateMembership(c, nil)
	if c.Bounds.Height != 300 {
		t.Errorf("Height = %v, want 300", c.Bounds.Height)
	}
}

func TestKubernetesWidth(t *testing.T) {
	c, _ := NewContainer(KubernetesTemplate(), geom.Point{})
	if c.Bounds.Width != 700 {
		t.Errorf("Width = %v, want 700", c.Bounds.Width)
	}
	if c.Bounds.Height != 400 {
		t.Errorf("Height = %v, want 400", c.Bounds.Height)
	}
	if c.Replicas != 3 {
		t.Errorf("Replicas = %d, want 3", c.Replicas)
	}

	c = Resize(c, 900, 400)
	c, _ = UpdateMembership(c, []Component{comp("a", CategoryAI, "", "")})
	if c.Bounds.Width != 900 {
		t.Errorf("Width = %v, want 900 after resize", c.Bounds.Width)
	}
}

func TestPortsOnlyForServingMembers(t *testing.T) {
	c, _ := NewContainer(KubernetesTemplate(), geom.Point{}, comp("pg", CategoryDatabase, "", ""))
	if len(c.Ports) != 0 {
		t.Errorf("Ports = %v, want none for a database-only container", c.Ports)
	}
	c, _ = UpdateMembership(c, append(c.Members, comp("ui", CategoryFrontend, "", "")))
	if !reflect.DeepEqual(c.Ports, []string{"80", "443", "8080"}) {
		t.Errorf("Ports = %v, want kubernetes defaults", c.Ports)
	}

	// Ports set by the user are kept.
	c.Ports = []string{"9000"}
	c, _ = UpdateMembership(c, c.Members)
	if !reflect.DeepEqual(c.Ports, []string{"9000"}) {
		t.Errorf("Ports = %v, want [9000]", c.Ports)
	}
}

func TestCustomTemplateDefaults(t *testing.T) {
	tpl := Template{
		Name:     "redis",
		Kind:     KindCustom,
		Width:    500,
		Height:   350,
		Ports:    []string{"6379"},
		Env:      map[string]string{"MODE": "cluster"},
		Baseline: &resources.Requirements{CPU: "2 cores", Memory: "4GB"},
	}
	c, _ := NewContainer(tpl, geom.Point{})

	if !reflect.DeepEqual(c.Ports, []string{"6379"}) {
		t.Errorf("Ports = %v, want [6379]", c.Ports)
	}
	if c.ResourceMode != resources.ModeManual {
		t.Errorf("ResourceMode = %q, want manual", c.ResourceMode)
	}
	if c.Resources.CPU.Amount != 2 || c.Resources.Memory.Amount != 4096 {
		t.Errorf("Resources = %+v, want 2 cores / 4096MB", c.Resources)
	}
	if c.Resources.Storage.Amount != 1 {
		t.Errorf("Storage = %v, want baseline 1GB", c.Resources.Storage.Amount)
	}

	tpl.Env["MODE"] = "single"
	if c.Env["MODE"] != "cluster" {
		t.Error("container env should not alias the template")
	}
}

func TestConvertToContainer(t *testing.T) {
	src := comp("svc", CategoryBackend, "", "")
	src.Name = "Payments"
	src.Bounds = geom.Rect{X: 120, Y: 80, Width: 160, Height: 60}

	c := ConvertToContainer(src, DockerTemplate())
	if c.ID != "svc" || c.Name != "Payments" {
		t.Errorf("identity = (%q,%q), want (svc,Payments)", c.ID, c.Name)
	}
	if c.Bounds.X != 120 || c.Bounds.Y != 80 {
		t.Errorf("origin = (%v,%v), want (120,80)", c.Bounds.X, c.Bounds.Y)
	}
	if len(c.Members) != 0 {
		t.Errorf("Members = %v, want empty", c.Members)
	}
}

func TestResizeAndPaging(t *testing.T) {
	var members []Component
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		members = append(members, comp(id, CategoryBackend, "", ""))
	}
	c, _ := NewContainer(DockerTemplate(), geom.Point{}, members...)
	if p := Pagination(c); p.Pages != 1 {
		t.Fatalf("Pages = %d, want 1 after auto-grow", p.Pages)
	}

	c = Resize(c, 100, 100)
	if c.Bounds.Width != 400 || c.Bounds.Height != 300 {
		t.Errorf("size = %vx%v, want clamped 400x300", c.Bounds.Width, c.Bounds.Height)
	}
	c = SetPage(c, 10)
	if c.CurrentPage != 6 {
		t.Errorf("CurrentPage = %d, want 6", c.CurrentPage)
	}

	c = Resize(c, 400, 440)
	p := Pagination(c)
	if p.PerPage != 3 || p.Pages != 3 {
		t.Errorf("Pagination = %+v, want 3 per page over 3 pages", p)
	}
	if c.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", c.CurrentPage)
	}

	c = SetPage(c, -1)
	if c.CurrentPage != 0 {
		t.Errorf("CurrentPage = %d, want 0", c.CurrentPage)
	}
}

func TestManualModeAndViolations(t *testing.T) {
	c, _ := NewContainer(DockerTemplate(), geom.Point{},
		comp("api", CategoryBackend, "1 core", "512MB"),
		comp("db", CategoryDatabase, "500m", "1GB"),
	)
	if Violations(c).Violated {
		t.Fatal("auto mode should never violate")
	}

	limits := resources.Limits{CPU: units.Cores(1), Memory: units.Megabytes(4096)}
	c = SetResourceMode(c, resources.ModeManual, &limits)

	if got := units.Format(c.Resources.CPU); got != "1 core" {
		t.Errorf("displayed CPU = %q, want %q", got, "1 core")
	}
	check := Violations(c)
	if !check.Violated || len(check.Messages) != 1 {
		t.Fatalf("Violations = %+v, want one CPU violation", check)
	}
	if want := "CPU usage 1.8 cores exceeds limit 1 core"; check.Messages[0] != want {
		t.Errorf("message = %q, want %q", check.Messages[0], want)
	}

	c = SetResourceMode(c, resources.ModeAuto, nil)
	if got := units.Format(c.Resources.CPU); got != "1.8 cores" {
		t.Errorf("CPU after auto = %q, want %q", got, "1.8 cores")
	}
	if c.ManualLimits == nil {
		t.Error("switching to auto should keep the stored limits")
	}
}
