// Package history provides bounded undo/redo for editor states.
//
// # Stack
//
// [Stack] keeps at most N snapshots (50 by default) and a cursor. Taking a
// snapshot after an undo discards the redo branch. Snapshots are stored as
// deep copies made by a caller-supplied clone function, so later mutation of
// the live state never reaches history.
//
// # Debouncing
//
// Editors snapshot after every mutation, but a drag or a typing burst should
// land as one history entry. [Debouncer] coalesces triggers within a quiet
// period and delivers only the latest value. Time comes from a [Scheduler]:
// [RealScheduler] for production and [VirtualScheduler] for tests and
// replays, where [VirtualScheduler.Advance] fires due timers synchronously.
package history
