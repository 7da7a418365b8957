package editor

import (
	"slices"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// Layout of copies and released members, in logical pixels.
const (
	duplicateOffset = 24.0
	releaseGap      = 20.0
)

// guard rejects edits while a gesture is in progress. The dragged node's
// live position is in e.state, so a snapshot taken now would record it.
func (e *Editor) guard() error {
	if e.drag.Phase == PhaseDragging {
		return errs.New(errs.ErrCodeDragInProgress, "finish dragging %q first", e.drag.NodeID)
	}
	return nil
}

// =============================================================================
// Ownership moves
// =============================================================================

// detach removes component id from its owner and returns it. A container
// that loses a member has its membership recomputed.
func (e *Editor) detach(id string) stack.Component {
	o, _ := e.state.FindComponent(id)
	comp := e.state.Component(o)
	if o.TopLevel() {
		e.state.Nodes = slices.Delete(e.state.Nodes, o.Index, o.Index+1)
		return comp
	}
	c := e.state.Containers[o.Container]
	members := slices.Delete(slices.Clone(c.Members), o.Index, o.Index+1)
	updated, _ := stack.UpdateMembership(c, members)
	e.setContainer(o.Container, updated)
	return comp
}

// move transfers component id into container ci. The caller has checked
// CanAccept. It returns any manual limit violations of the new owner.
func (e *Editor) move(id string, ci int) []string {
	comp := e.detach(id)
	c := e.state.Containers[ci]
	updated, _ := stack.UpdateMembership(c, append(slices.Clone(c.Members), comp))
	e.setContainer(ci, updated)
	return stack.Violations(updated).Messages
}

// releasePosition is where the n-th component released from c lands.
func (e *Editor) releasePosition(c stack.Container, n int, comp stack.Component) geom.Point {
	comp = withDefaultSize(comp)
	p := geom.Point{
		X: c.Bounds.X,
		Y: c.Bounds.Bottom() + releaseGap + float64(n)*(comp.Bounds.Height+releaseGap),
	}
	return geom.ClampToWorkArea(p, e.workArea)
}

// =============================================================================
// Adding nodes
// =============================================================================

// AddComponent places a component on the canvas and returns its id.
// An empty id is generated; a zero size gets the default node size.
func (e *Editor) AddComponent(c stack.Component) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return "", err
	}
	if err := errs.ValidateName(c.Name); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = stack.NewID()
	} else if err := errs.ValidateID(c.ID); err != nil {
		return "", err
	}
	if _, exists := e.state.Lookup(c.ID); exists {
		return "", errs.New(errs.ErrCodeInvalidInput, "node %q already exists", c.ID)
	}

	c = withDefaultSize(c.Clone())
	c.Bounds = c.Bounds.MoveTo(geom.ClampToWorkArea(c.Bounds.Origin(), e.workArea))
	e.state.Nodes = append(e.state.Nodes, c)
	e.commit()
	e.logger.Debug("component added", "id", c.ID, "name", c.Name)
	return c.ID, nil
}

// AddContainer creates an empty container from the named template at pos.
func (e *Editor) AddContainer(template string, pos geom.Point) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return "", err
	}
	t, err := e.templates.Lookup(template)
	if err != nil {
		return "", err
	}
	c, _ := stack.NewContainer(t, geom.ClampToWorkArea(pos, e.workArea))
	e.state.Containers = append(e.state.Containers, c)
	e.commit()
	e.logger.Debug("container added", "id", c.ID, "template", t.Name)
	return c.ID, nil
}

// ConvertToContainer turns free component id into an empty container of the
// named template, keeping its id, name and position.
func (e *Editor) ConvertToContainer(id, template string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	t, err := e.templates.Lookup(template)
	if err != nil {
		return err
	}
	o, ok := e.state.FindComponent(id)
	if !ok {
		return nodeNotFound(id)
	}
	if !o.TopLevel() {
		return errs.New(errs.ErrCodeInvalidInput, "release %q from its container before converting it", id)
	}

	comp := e.detach(id)
	e.state.Containers = append(e.state.Containers, stack.ConvertToContainer(comp, t))
	e.commit()
	return nil
}

// Duplicate copies node id with a fresh id, offset from the original.
// A duplicated container copies its members with fresh ids; a duplicated
// member joins the same container.
func (e *Editor) Duplicate(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return "", err
	}
	offset := geom.Point{X: duplicateOffset, Y: duplicateOffset}

	if i := e.state.FindContainer(id); i >= 0 {
		c := e.state.Containers[i].Clone()
		c.ID = stack.NewID()
		c.Name += " (copy)"
		c.Bounds = c.Bounds.MoveTo(geom.ClampToWorkArea(c.Bounds.Origin().Add(offset), e.workArea))
		for j := range c.Members {
			c.Members[j].ID = stack.NewID()
		}
		e.state.Containers = append(e.state.Containers, c)
		e.commit()
		return c.ID, nil
	}

	o, ok := e.state.FindComponent(id)
	if !ok {
		return "", nodeNotFound(id)
	}
	comp := e.state.Component(o).Clone()
	comp.ID = stack.NewID()
	comp.Name += " (copy)"
	comp.Bounds = comp.Bounds.MoveTo(geom.ClampToWorkArea(comp.Bounds.Origin().Add(offset), e.workArea))

	if o.TopLevel() {
		e.state.Nodes = append(e.state.Nodes, comp)
	} else {
		c := e.state.Containers[o.Container]
		updated, _ := stack.UpdateMembership(c, append(slices.Clone(c.Members), comp))
		e.setContainer(o.Container, updated)
	}
	e.commit()
	return comp.ID, nil
}

// =============================================================================
// Removing and moving nodes
// =============================================================================

// DeleteNode removes node id and every connection touching it. Deleting a
// container releases its members onto the canvas below it.
func (e *Editor) DeleteNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	if i := e.state.FindContainer(id); i >= 0 {
		c := e.state.Containers[i]
		for n, m := range c.Members {
			m.Bounds = withDefaultSize(m).Bounds.MoveTo(e.releasePosition(c, n, m))
			e.state.Nodes = append(e.state.Nodes, m)
		}
		e.state.Containers = slices.Delete(e.state.Containers, i, i+1)
		e.logger.Debug("container deleted", "id", id, "released", len(c.Members))
	} else if _, ok := e.state.FindComponent(id); ok {
		e.detach(id)
	} else {
		return nodeNotFound(id)
	}

	e.state.Connections = slices.DeleteFunc(e.state.Connections, func(c stack.Connection) bool {
		return c.From == id || c.To == id
	})
	e.commit()
	return nil
}

// MoveToContainer moves component id into containerID without a gesture.
// A container that does not accept the component leaves everything
// unchanged and returns a REJECTED_MEMBER error.
func (e *Editor) MoveToContainer(id, containerID string) (DropResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return DropResult{}, err
	}
	ci, err := e.containerIndex(containerID)
	if err != nil {
		return DropResult{}, err
	}
	comp, ok := e.component(id)
	if !ok {
		return DropResult{}, nodeNotFound(id)
	}

	c := e.state.Containers[ci]
	res := DropResult{NodeID: id, Target: containerID, Position: comp.Bounds.Origin()}
	if c.MemberIndex(id) >= 0 {
		res.Outcome = observability.DropAbsorbed
		return res, nil
	}
	if !stack.CanAccept(c, comp) {
		return DropResult{}, errs.New(errs.ErrCodeRejectedMember, "%s", rejectionHint(c))
	}

	res.Outcome = observability.DropAbsorbed
	res.Violations = e.move(id, ci)
	e.commit()
	return res, nil
}

// ReleaseMember moves a member out of its container onto the canvas below it.
func (e *Editor) ReleaseMember(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	o, ok := e.state.FindComponent(id)
	if !ok {
		return nodeNotFound(id)
	}
	if o.TopLevel() {
		return errs.New(errs.ErrCodeInvalidInput, "%q is not in a container", id)
	}

	comp := withDefaultSize(e.detach(id))
	comp.Bounds = comp.Bounds.MoveTo(e.releasePosition(e.state.Containers[o.Container], 0, comp))
	e.state.Nodes = append(e.state.Nodes, comp)
	e.commit()
	return nil
}

// ReorderMembers sets the member order of a container. order must be a
// permutation of the current member ids.
func (e *Editor) ReorderMembers(containerID string, order []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	ci, err := e.containerIndex(containerID)
	if err != nil {
		return err
	}
	c := e.state.Containers[ci]
	if len(order) != len(c.Members) {
		return errs.New(errs.ErrCodeInvalidInput, "order has %d ids, container has %d members", len(order), len(c.Members))
	}

	members := make([]stack.Component, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		idx := c.MemberIndex(id)
		if idx < 0 || seen[id] {
			return errs.New(errs.ErrCodeInvalidInput, "order is not a permutation of the members: %q", id)
		}
		seen[id] = true
		members = append(members, c.Members[idx])
	}

	updated, _ := stack.UpdateMembership(c, members)
	e.setContainer(ci, updated)
	e.commit()
	return nil
}

// =============================================================================
// Properties
// =============================================================================

// Rename sets the display name of any node.
func (e *Editor) Rename(id, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	if err := errs.ValidateName(name); err != nil {
		return err
	}
	if i := e.state.FindContainer(id); i >= 0 {
		e.state.Containers[i].Name = name
	} else if o, ok := e.state.FindComponent(id); ok {
		if o.TopLevel() {
			e.state.Nodes[o.Index].Name = name
		} else {
			e.state.Containers[o.Container].Members[o.Index].Name = name
		}
	} else {
		return nodeNotFound(id)
	}
	e.commit()
	return nil
}

// SetName sets the stack name.
func (e *Editor) SetName(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	if err := errs.ValidateName(name); err != nil {
		return err
	}
	e.state.Name = name
	e.commit()
	return nil
}

// SetDescription sets the stack description.
func (e *Editor) SetDescription(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	e.state.Description = text
	e.commit()
	return nil
}

// SetResources replaces a component's free-text requirements. The owning
// container, if any, is re-aggregated.
func (e *Editor) SetResources(id string, req *resources.Requirements) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	o, ok := e.state.FindComponent(id)
	if !ok {
		return nodeNotFound(id)
	}
	var r *resources.Requirements
	if req != nil {
		cp := *req
		r = &cp
	}

	if o.TopLevel() {
		e.state.Nodes[o.Index].Resources = r
	} else {
		c := e.state.Containers[o.Container].Clone()
		c.Members[o.Index].Resources = r
		updated, _ := stack.UpdateMembership(c, c.Members)
		e.setContainer(o.Container, updated)
	}
	e.commit()
	return nil
}

// Resize sets a container's size, clamped to its minimum.
func (e *Editor) Resize(id string, width, height float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}
	ci, err := e.containerIndex(id)
	if err != nil {
		return err
	}
	e.state.Containers[ci] = stack.Resize(e.state.Containers[ci], width, height)
	e.commit()
	return nil
}

// SetPage shows page of a container's member list, clamped to the valid range.
func (e *Editor) SetPage(id string, page int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	ci, err := e.containerIndex(id)
	if err != nil {
		return err
	}
	e.state.Containers[ci] = stack.SetPage(e.state.Containers[ci], page)
	e.commit()
	return nil
}

// SetResourceMode switches a container between auto and manual resources
// and returns the limit check against the current members.
func (e *Editor) SetResourceMode(id string, mode resources.Mode, limits *resources.Limits) (resources.LimitCheck, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return resources.LimitCheck{}, err
	}

	if !mode.Valid() {
		return resources.LimitCheck{}, errs.New(errs.ErrCodeInvalidInput, "unknown resource mode %q", mode)
	}
	ci, err := e.containerIndex(id)
	if err != nil {
		return resources.LimitCheck{}, err
	}
	updated := stack.SetResourceMode(e.state.Containers[ci], mode, limits)
	e.setContainer(ci, updated)
	e.commit()
	return stack.Violations(updated), nil
}

// =============================================================================
// Connections
// =============================================================================

// Connect adds a typed edge between two existing nodes and returns its id.
// Self-loops and exact duplicates are rejected.
func (e *Editor) Connect(from, to string, typ stack.ConnectionType) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return "", err
	}

	if from == to {
		return "", errs.New(errs.ErrCodeInvalidInput, "cannot connect %q to itself", from)
	}
	for _, id := range []string{from, to} {
		if _, ok := e.state.Lookup(id); !ok {
			return "", nodeNotFound(id)
		}
	}
	if typ == "" {
		typ = stack.ConnectionDependsOn
	}
	for _, c := range e.state.Connections {
		if c.From == from && c.To == to && c.Type == typ {
			return "", errs.New(errs.ErrCodeInvalidInput, "connection %s -> %s already exists", from, to)
		}
	}

	conn := stack.Connection{ID: stack.NewID(), From: from, To: to, Type: typ}
	e.state.Connections = append(e.state.Connections, conn)
	e.commit()
	return conn.ID, nil
}

// Disconnect removes connection id.
func (e *Editor) Disconnect(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard(); err != nil {
		return err
	}

	n := len(e.state.Connections)
	e.state.Connections = slices.DeleteFunc(e.state.Connections, func(c stack.Connection) bool {
		return c.ID == id
	})
	if len(e.state.Connections) == n {
		return errs.New(errs.ErrCodeNotFound, "connection %q not found", id)
	}
	e.commit()
	return nil
}

// Container returns a copy of container id.
func (e *Editor) Container(id string) (stack.Container, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ci, err := e.containerIndex(id)
	if err != nil {
		return stack.Container{}, err
	}
	return e.state.Containers[ci].Clone(), nil
}
