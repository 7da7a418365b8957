package editor

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/pagination"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// =============================================================================
// Events
// =============================================================================

// Event is a pointer gesture input. Only the types below implement it.
type Event interface {
	event()
}

// PointerDown grabs the node with NodeID at screen position (X, Y).
type PointerDown struct {
	NodeID string  `json:"node_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// PointerMove moves the grabbed node with the pointer.
type PointerMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerUp drops the grabbed node at screen position (X, Y).
type PointerUp struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cancel aborts the gesture and restores the start position.
type Cancel struct{}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Cancel) event()      {}

// =============================================================================
// Drag state
// =============================================================================

// Phase is the drag state machine's state.
type Phase int

// Drag phases.
const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseDropped
	PhaseCancelled
)

var phaseNames = [...]string{"idle", "dragging", "dropped", "cancelled"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// DragState is the observable state of the current or last gesture.
type DragState struct {
	Phase       Phase      `json:"phase"`
	NodeID      string     `json:"node_id,omitempty"`
	IsContainer bool       `json:"is_container,omitempty"`
	Start       geom.Point `json:"start"`    // logical origin at grab time
	Offset      geom.Point `json:"offset"`   // pointer minus origin at grab time
	Position    geom.Point `json:"position"` // current logical origin
	Size        geom.Point `json:"size"`     // width and height of the moving rect

	// Hover is the container under the moving component, if any, and
	// HoverAccepts whether that container would take it.
	Hover        string `json:"hover,omitempty"`
	HoverAccepts bool   `json:"hover_accepts,omitempty"`

	startedAt time.Time
}

// Rect returns the moving rectangle in logical space.
func (d DragState) Rect() geom.Rect {
	return geom.Rect{X: d.Position.X, Y: d.Position.Y, Width: d.Size.X, Height: d.Size.Y}
}

// DropResult describes how a gesture ended.
type DropResult struct {
	NodeID     string     `json:"node_id"`
	Outcome    string     `json:"outcome"`
	Target     string     `json:"target,omitempty"`
	Position   geom.Point `json:"position"`
	Hint       string     `json:"hint,omitempty"`
	Violations []string   `json:"violations,omitempty"`
}

// Rejected reports whether a container refused the component.
func (r DropResult) Rejected() bool {
	return r.Outcome == observability.DropRejected
}

// Default size for components that have never been laid out.
const (
	defaultNodeWidth  = 160.0
	defaultNodeHeight = 60.0
	slotInset         = 20.0
)

// Drag returns the current gesture state.
func (e *Editor) Drag() DragState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag
}

// Dispatch feeds events to the drag state machine in order. It returns the
// result of the last gesture that ended in this batch, or nil. Processing
// stops at the first invalid event.
func (e *Editor) Dispatch(events ...Event) (*DropResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var last *DropResult
	for _, ev := range events {
		res, err := e.handle(ev)
		if err != nil {
			return last, err
		}
		if res != nil {
			last = res
		}
	}
	return last, nil
}

func (e *Editor) handle(ev Event) (*DropResult, error) {
	switch ev := ev.(type) {
	case PointerDown:
		return nil, e.pointerDown(ev)
	case PointerMove:
		if e.drag.Phase != PhaseDragging {
			return nil, errs.New(errs.ErrCodeInvalidEvent, "pointer move without an active drag")
		}
		e.moveTo(ev.X, ev.Y)
		return nil, nil
	case PointerUp:
		if e.drag.Phase != PhaseDragging {
			return nil, errs.New(errs.ErrCodeInvalidEvent, "pointer up without an active drag")
		}
		e.moveTo(ev.X, ev.Y)
		return e.drop(), nil
	case Cancel:
		if e.drag.Phase != PhaseDragging {
			return nil, nil
		}
		return e.cancelDrag(), nil
	case nil:
		return nil, errs.New(errs.ErrCodeInvalidEvent, "nil event")
	default:
		return nil, errs.New(errs.ErrCodeInvalidEvent, "unsupported event %T", ev)
	}
}

func (e *Editor) pointerDown(ev PointerDown) error {
	if e.drag.Phase == PhaseDragging {
		return errs.New(errs.ErrCodeDragInProgress, "already dragging %q", e.drag.NodeID)
	}

	rect, isContainer, ok := e.grabRect(ev.NodeID)
	if !ok {
		return nodeNotFound(ev.NodeID)
	}

	pointer := e.toLogical(ev.X, ev.Y)
	e.drag = DragState{
		Phase:       PhaseDragging,
		NodeID:      ev.NodeID,
		IsContainer: isContainer,
		Start:       rect.Origin(),
		Offset:      pointer.Sub(rect.Origin()),
		Position:    rect.Origin(),
		Size:        geom.Point{X: rect.Width, Y: rect.Height},
		startedAt:   e.sched.Now(),
	}
	e.logger.Debug("drag start", "node", ev.NodeID, "container", isContainer)
	return nil
}

// grabRect returns the logical rect of a node at grab time. Members are
// grabbed from their row inside the container.
func (e *Editor) grabRect(id string) (geom.Rect, bool, bool) {
	if i := e.state.FindContainer(id); i >= 0 {
		return e.state.Containers[i].Bounds, true, true
	}
	o, ok := e.state.FindComponent(id)
	if !ok {
		return geom.Rect{}, false, false
	}
	comp := withDefaultSize(e.state.Component(o))
	if o.TopLevel() {
		return comp.Bounds, false, true
	}
	return memberSlot(e.state.Containers[o.Container], o.Index, comp.Bounds), false, true
}

// memberSlot places member idx on its row of the container's list.
func memberSlot(c stack.Container, idx int, size geom.Rect) geom.Rect {
	p := stack.Pagination(c)
	start, _ := pagination.Window(p.Page, p.Total, p.PerPage)
	return geom.Rect{
		X:      c.Bounds.X + slotInset,
		Y:      c.Bounds.Y + pagination.HeaderHeight + float64(idx-start)*pagination.ItemHeight,
		Width:  size.Width,
		Height: size.Height,
	}
}

func (e *Editor) toLogical(x, y float64) geom.Point {
	return geom.ScreenToLogical(geom.Point{X: x, Y: y}, e.viewport.Origin, e.viewport.Transform)
}

// moveTo tracks the pointer. Free nodes and containers follow live; members
// stay in their container until the drop.
func (e *Editor) moveTo(x, y float64) {
	pos := geom.ClampToWorkArea(e.toLogical(x, y).Sub(e.drag.Offset), e.workArea)
	e.drag.Position = pos
	e.placeTopLevel(e.drag.NodeID, pos)

	if e.drag.IsContainer {
		return
	}
	e.drag.Hover, e.drag.HoverAccepts = "", false
	if target, ok := geom.FindTarget(e.drag.Rect(), e.state.DropZones()); ok {
		e.drag.Hover = target
		comp, _ := e.component(e.drag.NodeID)
		e.drag.HoverAccepts = stack.CanAccept(e.state.Containers[e.state.FindContainer(target)], comp)
	}
}

// placeTopLevel moves a free node or container origin. Members are ignored.
func (e *Editor) placeTopLevel(id string, pos geom.Point) {
	if i := e.state.FindContainer(id); i >= 0 {
		e.state.Containers[i].Bounds = e.state.Containers[i].Bounds.MoveTo(pos)
		return
	}
	if o, ok := e.state.FindComponent(id); ok && o.TopLevel() {
		e.state.Nodes[o.Index].Bounds = e.state.Nodes[o.Index].Bounds.MoveTo(pos)
	}
}

func (e *Editor) component(id string) (stack.Component, bool) {
	o, ok := e.state.FindComponent(id)
	if !ok {
		return stack.Component{}, false
	}
	return e.state.Component(o), true
}

func (e *Editor) drop() *DropResult {
	d := e.drag
	res := &DropResult{NodeID: d.NodeID, Position: d.Position}

	defer func() {
		e.drag.Phase = PhaseDropped
		e.drag.Hover, e.drag.HoverAccepts = "", false
		e.hooks.OnDrop(res.Outcome, e.sched.Now().Sub(d.startedAt))
		e.logger.Debug("drop", "node", d.NodeID, "outcome", res.Outcome, "target", res.Target)
	}()

	if d.IsContainer {
		res.Outcome = observability.DropContainer
		if d.Position != d.Start {
			e.commit()
		}
		return res
	}

	o, _ := e.state.FindComponent(d.NodeID)
	comp := e.state.Component(o)
	target, hit := geom.FindTarget(d.Rect(), e.state.DropZones())

	switch {
	case hit && !o.TopLevel() && e.state.Containers[o.Container].ID == target:
		// Dropped back onto its own container.
		res.Outcome = observability.DropAbsorbed
		res.Target = target
		return res

	case hit:
		ci := e.state.FindContainer(target)
		res.Target = target
		if !stack.CanAccept(e.state.Containers[ci], comp) {
			res.Outcome = observability.DropRejected
			res.Hint = rejectionHint(e.state.Containers[ci])
			e.free(d.NodeID, d.Position)
			return res
		}
		res.Outcome = observability.DropAbsorbed
		res.Violations = e.move(d.NodeID, ci)
		e.commit()
		return res

	default:
		res.Outcome = observability.DropFree
		e.free(d.NodeID, d.Position)
		return res
	}
}

// free leaves a component on the canvas at pos, releasing it from its
// container when it was a member.
func (e *Editor) free(id string, pos geom.Point) {
	o, _ := e.state.FindComponent(id)
	if o.TopLevel() {
		if pos != e.drag.Start {
			e.commit()
		}
		return
	}
	comp := withDefaultSize(e.detach(id))
	comp.Bounds = comp.Bounds.MoveTo(pos)
	e.state.Nodes = append(e.state.Nodes, comp)
	e.commit()
}

func (e *Editor) cancelDrag() *DropResult {
	d := e.drag
	e.placeTopLevel(d.NodeID, d.Start)
	e.drag.Phase = PhaseCancelled
	e.drag.Position = d.Start
	e.drag.Hover, e.drag.HoverAccepts = "", false
	e.hooks.OnDrop(observability.DropCancelled, e.sched.Now().Sub(d.startedAt))
	e.logger.Debug("drag cancelled", "node", d.NodeID)
	return &DropResult{NodeID: d.NodeID, Outcome: observability.DropCancelled, Position: d.Start}
}

// rejectionHint explains which components a container takes.
func rejectionHint(c stack.Container) string {
	accepts, _ := stack.AcceptedCategories(c)
	names := make([]string, len(accepts))
	for i, a := range accepts {
		names[i] = string(a)
	}
	return fmt.Sprintf("%s accepts only %s components", c.Name, strings.Join(names, ", "))
}

func withDefaultSize(c stack.Component) stack.Component {
	if c.Bounds.Width <= 0 {
		c.Bounds.Width = defaultNodeWidth
	}
	if c.Bounds.Height <= 0 {
		c.Bounds.Height = defaultNodeHeight
	}
	return c
}
