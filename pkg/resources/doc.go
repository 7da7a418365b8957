// Package resources aggregates resource requirements across container members.
//
// Components carry free-text [Requirements]. A container's [Profile] is the
// per-dimension sum of its members' parsed requirements multiplied by
// [OverheadFactor] (1.2), which models the runtime cost of the container
// itself: orchestration agent, network namespace and so on. Unparseable or
// missing values contribute zero. An empty container reports [Baseline].
//
// In manual mode a container displays user-supplied [Limits] instead;
// [CheckManualLimits] flags where the aggregated demand exceeds them. A
// violation is a warning, never a blocking error.
package resources
