// Package editor hosts one editing session over a [stack.State].
//
// An [Editor] owns the state, feeds pointer gestures through an explicit drag
// state machine, performs ownership moves between the canvas and containers,
// and mirrors every structural change into an undo history.
//
// # Drag state machine
//
//	Idle --PointerDown--> Dragging --PointerUp--> Dropped
//	                         |   ^
//	                 PointerMove |
//	                         +---+
//	                         |
//	                       Cancel --> Cancelled
//
// Events are delivered with [Editor.Dispatch]. Every pointer position is
// mapped from screen to logical canvas space with the current viewport, the
// grab offset is preserved and the node origin is clamped to the work area.
// On drop a component is hit-tested against every container's drop zone;
// a hit that the container accepts moves the component into it, anything else
// leaves it free at the drop position. Containers are moved, never nested.
//
// # History
//
// Mutations are snapshotted through a debouncer so a burst of edits becomes
// one undo step. Undo, Redo and MarkSaved flush the pending snapshot first,
// so no mutation is ever lost. Time comes from a [history.Scheduler]; pass a
// [history.VirtualScheduler] with [WithScheduler] for deterministic tests.
package editor
