package stack

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/stackcanvas/pkg/cache"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
)

// State is the structural editor state: everything undo/redo restores and
// everything a host serializes.
type State struct {
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Nodes       []Component  `json:"nodes,omitempty" bson:"nodes,omitempty" validate:"dive"`
	Containers  []Container  `json:"containers,omitempty" bson:"containers,omitempty" validate:"dive"`
	Connections []Connection `json:"connections,omitempty" bson:"connections,omitempty" validate:"dive"`
}

// Clone returns a deep copy of s. Empty lists are normalized to nil so that
// structurally equal states fingerprint identically.
func (s State) Clone() State {
	out := State{Name: s.Name, Description: s.Description}
	if len(s.Nodes) > 0 {
		out.Nodes = make([]Component, len(s.Nodes))
		for i, n := range s.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	if len(s.Containers) > 0 {
		out.Containers = make([]Container, len(s.Containers))
		for i, c := range s.Containers {
			out.Containers[i] = c.Clone()
		}
	}
	if len(s.Connections) > 0 {
		out.Connections = append([]Connection(nil), s.Connections...)
	}
	return out
}

// Fingerprint returns a SHA-256 over the canonical JSON encoding of s.
// Two states are structurally equal iff their fingerprints match.
func (s State) Fingerprint() string {
	data, err := json.Marshal(s.Clone())
	if err != nil {
		// State only holds plain data; Marshal cannot fail.
		panic(fmt.Sprintf("stack: marshal state: %v", err))
	}
	return cache.Hash(data)
}

// Equal reports structural equality.
func (s State) Equal(o State) bool {
	return s.Fingerprint() == o.Fingerprint()
}

// =============================================================================
// Lookup
// =============================================================================

// Owner locates a component: Container is -1 for the top-level node list,
// otherwise the index into Containers. Index is the position within the owner.
type Owner struct {
	Container int
	Index     int
}

// TopLevel reports whether the component is a free canvas node.
func (o Owner) TopLevel() bool { return o.Container < 0 }

// FindComponent returns where component id lives.
func (s State) FindComponent(id string) (Owner, bool) {
	for i, n := range s.Nodes {
		if n.ID == id {
			return Owner{Container: -1, Index: i}, true
		}
	}
	for ci, c := range s.Containers {
		if mi := c.MemberIndex(id); mi >= 0 {
			return Owner{Container: ci, Index: mi}, true
		}
	}
	return Owner{}, false
}

// Component returns the component at owner.
func (s State) Component(o Owner) Component {
	if o.TopLevel() {
		return s.Nodes[o.Index]
	}
	return s.Containers[o.Container].Members[o.Index]
}

// FindContainer returns the index of container id, or -1.
func (s State) FindContainer(id string) int {
	for i, c := range s.Containers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Lookup returns the top-level node or container member with id.
func (s State) Lookup(id string) (Node, bool) {
	if i := s.FindContainer(id); i >= 0 {
		return s.Containers[i], true
	}
	if o, ok := s.FindComponent(id); ok {
		return s.Component(o), true
	}
	return nil, false
}

// DropZones returns the containers' drop zones in container order.
func (s State) DropZones() []geom.DropZone {
	zones := make([]geom.DropZone, len(s.Containers))
	for i, c := range s.Containers {
		zones[i] = c.DropZone()
	}
	return zones
}

// ComponentCount returns the number of components, free or contained.
func (s State) ComponentCount() int {
	n := len(s.Nodes)
	for _, c := range s.Containers {
		n += len(c.Members)
	}
	return n
}

// CheckOwnership verifies that every node id is unique across the top-level
// list, the containers and all member lists.
func (s State) CheckOwnership() error {
	seen := make(map[string]string)
	claim := func(id, owner string) error {
		if prev, ok := seen[id]; ok {
			return errs.New(errs.ErrCodeInvalidInput, "node %s owned by both %s and %s", id, prev, owner)
		}
		seen[id] = owner
		return nil
	}

	for _, n := range s.Nodes {
		if err := claim(n.ID, "canvas"); err != nil {
			return err
		}
	}
	for _, c := range s.Containers {
		if err := claim(c.ID, "canvas"); err != nil {
			return err
		}
		for _, m := range c.Members {
			if err := claim(m.ID, "container "+c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate checks field constraints and the ownership invariant.
func (s State) Validate() error {
	if err := structValidator().Struct(s); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid stack %q", s.Name)
	}
	return s.CheckOwnership()
}

// Normalize re-runs UpdateMembership on every container so derived fields
// (size, ports, resources, page) match the members. Used after loading
// documents that were edited outside the editor. Members a container no
// longer accepts are moved to the canvas.
func (s State) Normalize() State {
	s = s.Clone()
	for i, c := range s.Containers {
		updated, rejected := UpdateMembership(c, c.Members)
		s.Containers[i] = updated
		s.Nodes = append(s.Nodes, rejected...)
	}
	return s
}

// =============================================================================
// Document
// =============================================================================

// Document is the unit of persistence: a state plus identity and timestamps.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	State     State     `json:"state" bson:"state"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewDocument wraps s in a document with a fresh id.
func NewDocument(s State) Document {
	now := time.Now().UTC()
	return Document{ID: NewID(), State: s.Clone(), CreatedAt: now, UpdatedAt: now}
}
