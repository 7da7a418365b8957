package editor

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/history"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// Viewport maps pointer coordinates into the canvas: Origin is the canvas
// element's bounding rect in screen space, Transform the current pan/zoom.
type Viewport struct {
	Origin    geom.Rect      `json:"origin"`
	Transform geom.Transform `json:"transform"`
}

// Editor is a single editing session. All methods are safe for concurrent
// use; debounced snapshots may be delivered from a timer goroutine.
type Editor struct {
	mu        sync.Mutex
	state     stack.State
	viewport  Viewport
	workArea  geom.WorkArea
	drag      DragState
	saved     string
	templates *stack.Registry
	history   *history.Stack[stack.State]
	debounce  *history.Debouncer[stack.State]
	sched     history.Scheduler
	logger    *log.Logger
	hooks     observability.EditorHooks
}

type config struct {
	sched     history.Scheduler
	delay     time.Duration
	size      int
	logger    *log.Logger
	templates *stack.Registry
	workArea  geom.WorkArea
}

// Option configures an Editor.
type Option func(*config)

// WithScheduler sets the clock used for debouncing and drag timing.
func WithScheduler(s history.Scheduler) Option {
	return func(c *config) { c.sched = s }
}

// WithDebounce sets the quiet period before a snapshot is taken.
// Zero snapshots every mutation immediately.
func WithDebounce(d time.Duration) Option {
	return func(c *config) { c.delay = d }
}

// WithHistorySize bounds the number of undo steps.
func WithHistorySize(n int) Option {
	return func(c *config) { c.size = n }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTemplates sets the registry AddContainer resolves templates from.
func WithTemplates(r *stack.Registry) Option {
	return func(c *config) { c.templates = r }
}

// WithWorkArea sets the bounds node origins are clamped to.
func WithWorkArea(a geom.WorkArea) Option {
	return func(c *config) { c.workArea = a }
}

// New starts a session over a copy of state. The initial state is the first
// history entry and counts as saved.
func New(state stack.State, opts ...Option) (*Editor, error) {
	cfg := config{
		delay:    history.DefaultDebounce,
		size:     history.DefaultMaxSnapshots,
		workArea: geom.DefaultWorkArea,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sched == nil {
		cfg.sched = history.NewRealScheduler()
	}
	if cfg.logger == nil {
		cfg.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.templates == nil {
		cfg.templates = stack.NewRegistry()
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	e := &Editor{
		state:     state.Clone(),
		viewport:  Viewport{Transform: geom.Identity()},
		workArea:  cfg.workArea,
		templates: cfg.templates,
		sched:     cfg.sched,
		logger:    cfg.logger,
		hooks:     observability.Editor(),
	}
	e.history = history.NewStack(cfg.size, stack.State.Clone, cfg.sched.Now)
	e.debounce = history.NewDebouncer(cfg.sched, cfg.delay, e.record)
	e.debounce.SetLocker(&e.mu)
	e.history.Snapshot(e.state)
	e.saved = e.state.Fingerprint()
	return e, nil
}

// record is the debouncer's delivery callback. Callers hold mu: the timer
// path takes it through the debouncer's locker, every other path already
// holds it.
func (e *Editor) record(s stack.State) {
	e.history.Snapshot(s)
	n := e.history.Len()
	e.hooks.OnSnapshot(n)
	e.logger.Debug("snapshot", "history", n)
}

// commit schedules a snapshot of the current state. Callers hold mu.
func (e *Editor) commit() {
	e.debounce.Trigger(e.state.Clone())
}

// State returns a copy of the current state.
func (e *Editor) State() stack.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Templates returns the session's template registry.
func (e *Editor) Templates() *stack.Registry {
	return e.templates
}

// CheckOwnership verifies that every node has exactly one owner.
func (e *Editor) CheckOwnership() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CheckOwnership()
}

// SetViewport updates the screen-to-canvas mapping used by later events.
func (e *Editor) SetViewport(v Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewport = v
}

// Viewport returns the current screen-to-canvas mapping.
func (e *Editor) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// =============================================================================
// History
// =============================================================================

// Flush takes the pending snapshot now, if any.
func (e *Editor) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce.Flush()
}

// Undo restores the previous snapshot. An active drag is cancelled first.
// It reports false at the oldest entry.
func (e *Editor) Undo() bool {
	return e.navigate("undo", e.history.Undo)
}

// Redo restores the next snapshot. It reports false at the newest entry,
// including after a mutation that followed an undo.
func (e *Editor) Redo() bool {
	return e.navigate("redo", e.history.Redo)
}

func (e *Editor) navigate(action string, step func() (stack.State, bool)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.drag.Phase == PhaseDragging {
		e.cancelDrag()
	}
	e.debounce.Flush()

	s, ok := step()
	e.hooks.OnHistory(action, ok)
	if !ok {
		return false
	}
	e.state = s
	e.logger.Debug(action, "nodes", len(s.Nodes), "containers", len(s.Containers))
	return true
}

// CanUndo reports whether Undo would move, counting a pending snapshot.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debounce.Pending() || e.history.CanUndo()
}

// CanRedo reports whether Redo would move. A pending snapshot discards the
// redo branch once flushed.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.debounce.Pending() && e.history.CanRedo()
}

// HistoryLen returns the number of stored snapshots after flushing.
func (e *Editor) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce.Flush()
	return e.history.Len()
}

// MarkSaved flushes pending history and records the current state as saved.
func (e *Editor) MarkSaved() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce.Flush()
	e.saved = e.state.Fingerprint()
}

// Dirty reports whether the state differs structurally from the last save.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Fingerprint() != e.saved
}

// =============================================================================
// Helpers
// =============================================================================

func nodeNotFound(id string) error {
	return errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
}

func (e *Editor) containerIndex(id string) (int, error) {
	i := e.state.FindContainer(id)
	if i < 0 {
		return -1, errs.New(errs.ErrCodeNodeNotFound, "container %q not found", id)
	}
	return i, nil
}

// setContainer replaces container i after a membership update and reports
// the change to hooks.
func (e *Editor) setContainer(i int, c stack.Container) {
	e.state.Containers[i] = c
	e.hooks.OnMembershipChange(string(c.Kind), len(c.Members))
	if v := stack.Violations(c); v.Violated {
		e.hooks.OnLimitViolation(c.ID, v.Messages)
		e.logger.Warn("resource limits exceeded", "container", c.Name, "details", v.Messages)
	}
}
