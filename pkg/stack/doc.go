// Package stack models the editable technology stack and the lifecycle of
// its containers.
//
// # Model
//
// A stack [State] holds free [Component] nodes, [Container] nodes and the
// typed [Connection] edges between them. Containers group components
// (Docker/Kubernetes/custom) and own them through their Members list.
//
// Nesting is flat by construction: Members is a []Component, so a container
// inside a container cannot be expressed. [Node] is a sealed interface
// satisfied only by Component and Container, and [CanAccept] rejects
// containers outright.
//
// A component id appears in at most one owner: the top-level Nodes list or a
// single container's Members. [State.CheckOwnership] verifies this.
//
// # Container Lifecycle
//
// Containers are created from a [Template] ([NewContainer]) or by converting
// a component ([ConvertToContainer]). [UpdateMembership] takes the complete
// desired member list, filters it through [CanAccept], resizes the container,
// infers default ports and always finishes by recomputing resources and
// clamping the page index, so derived state is never stale.
//
//	reg := stack.NewRegistry()
//	tmpl, _ := reg.Lookup(stack.TemplateDocker)
//	c, _ := stack.NewContainer(tmpl, geom.Point{X: 100, Y: 100})
//	c, rejected := stack.UpdateMembership(c, []stack.Component{api, db})
//
// # Serialization
//
// [Document] wraps a State with an id and timestamps. [Write] and [Read]
// use indented JSON; the store adapters reuse the same struct tags (json and
// bson).
package stack
