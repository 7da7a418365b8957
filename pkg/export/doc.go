// Package export turns a stack into deployment manifests.
//
// [Kubernetes] emits an apps/v1 Deployment and, when ports are assigned, a v1
// Service for every kubernetes container. [Compose] emits a docker compose
// file with one service per docker container. Both derive CPU and memory
// limits from the container's displayed resource profile, so manual limits
// set in the editor carry through to the manifest.
//
//	manifest, err := export.Kubernetes(state, export.Options{Namespace: "shop"})
//	compose, err := export.Compose(state, export.Options{})
package export
