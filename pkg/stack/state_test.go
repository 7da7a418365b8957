package stack

import (
	"bytes"
	"strings"
	"testing"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
)

func sampleState() State {
	c, _ := NewContainer(DockerTemplate(), geom.Point{X: 400, Y: 100},
		comp("api", CategoryBackend, "1 core", "512MB"),
	)
	c.ID = "box"
	return State{
		Name:       "shop",
		Nodes:      []Component{comp("web", CategoryFrontend, "", "")},
		Containers: []Container{c},
		Connections: []Connection{
			{ID: "e1", From: "web", To: "api", Type: ConnectionDataFlow},
		},
	}
}

func TestFingerprint(t *testing.T) {
	s := sampleState()
	if s.Fingerprint() != s.Clone().Fingerprint() {
		t.Error("clone should fingerprint identically")
	}

	empty := State{Name: "x", Nodes: []Component{}}
	if !empty.Equal(State{Name: "x"}) {
		t.Error("empty and nil lists should compare equal")
	}

	moved := s.Clone()
	moved.Nodes[0].Bounds.X += 1
	if s.Equal(moved) {
		t.Error("moving a node should change the fingerprint")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleState()
	c := s.Clone()
	c.Containers[0].Members[0].Name = "changed"
	c.Containers[0].Ports = append(c.Containers[0].Ports[:0], "1")

	if s.Containers[0].Members[0].Name != "api" {
		t.Error("Clone should copy members")
	}
	if s.Containers[0].Ports[0] != "3000" {
		t.Error("Clone should copy ports")
	}
}

func TestFindComponent(t *testing.T) {
	s := sampleState()

	o, ok := s.FindComponent("web")
	if !ok || !o.TopLevel() {
		t.Errorf("FindComponent(web) = %+v, %v; want top level", o, ok)
	}
	o, ok = s.FindComponent("api")
	if !ok || o.Container != 0 || o.Index != 0 {
		t.Errorf("FindComponent(api) = %+v, %v; want container 0", o, ok)
	}
	if _, ok := s.FindComponent("box"); ok {
		t.Error("containers are not components")
	}

	n, ok := s.Lookup("box")
	if _, isContainer := n.(Container); !ok || !isContainer {
		t.Errorf("Lookup(box) = %T, want Container", n)
	}
	if s.ComponentCount() != 2 {
		t.Errorf("ComponentCount = %d, want 2", s.ComponentCount())
	}
}

func TestCheckOwnership(t *testing.T) {
	s := sampleState()
	if err := s.CheckOwnership(); err != nil {
		t.Fatalf("CheckOwnership: %v", err)
	}

	s.Nodes = append(s.Nodes, comp("api", CategoryBackend, "", ""))
	err := s.CheckOwnership()
	if err == nil {
		t.Fatal("duplicate owner should fail")
	}
	if !strings.Contains(err.Error(), "api") {
		t.Errorf("error %q should name the node", err)
	}
}

func TestValidate(t *testing.T) {
	s := sampleState()
	s.Containers[0].Kind = "vm"
	err := s.Validate()
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Validate = %v, want INVALID_INPUT", err)
	}
}

func TestNormalize(t *testing.T) {
	s := sampleState()
	s.Containers[0].Members = append(s.Containers[0].Members, comp("ci", CategoryDevOps, "", ""))
	s.Containers[0].Bounds.Height = 10

	n := s.Normalize()
	if len(n.Containers[0].Members) != 1 {
		t.Errorf("Members = %d, want 1", len(n.Containers[0].Members))
	}
	if len(n.Nodes) != 2 || n.Nodes[1].ID != "ci" {
		t.Errorf("Nodes = %v, want rejected member on the canvas", n.Nodes)
	}
	if n.Containers[0].Bounds.Height != 300 {
		t.Errorf("Height = %v, want 300", n.Containers[0].Bounds.Height)
	}
	if err := n.CheckOwnership(); err != nil {
		t.Errorf("CheckOwnership after Normalize: %v", err)
	}
}

func TestReadBareState(t *testing.T) {
	doc, err := Read(strings.NewReader(`{"name":"bare","nodes":[{"id":"a","name":"A","bounds":{"x":0,"y":0,"width":10,"height":10}}]}`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.ID == "" {
		t.Error("bare state should get a document id")
	}
	if doc.State.Name != "bare" || len(doc.State.Nodes) != 1 {
		t.Errorf("State = %+v", doc.State)
	}
}

func TestReadRejectsDuplicateOwners(t *testing.T) {
	s := sampleState()
	s.Nodes = append(s.Nodes, s.Containers[0].Members[0])

	var buf bytes.Buffer
	if err := Write(NewDocument(s), &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Read(&buf); err == nil {
		t.Error("Read should reject a document that breaks ownership")
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("{")); err == nil {
		t.Error("Read should fail on malformed JSON")
	}
}
