// Package server exposes editor sessions over an HTTP JSON API.
//
// Each stack document opened through the API gets one [editor.Editor] that
// lives until the document is deleted or the server stops. Edits are applied
// to the in-memory session and persisted when the client saves.
//
// # Routes
//
//	GET    /healthz
//	GET    /metrics
//	GET    /api/templates
//	GET    /api/stacks
//	POST   /api/stacks
//	GET    /api/stacks/{id}
//	PUT    /api/stacks/{id}
//	DELETE /api/stacks/{id}
//	POST   /api/stacks/{id}/components
//	POST   /api/stacks/{id}/containers
//	GET    /api/stacks/{id}/containers/{cid}
//	PUT    /api/stacks/{id}/containers/{cid}/resources
//	PUT    /api/stacks/{id}/containers/{cid}/page
//	DELETE /api/stacks/{id}/nodes/{nid}
//	POST   /api/stacks/{id}/connections
//	POST   /api/stacks/{id}/events
//	POST   /api/stacks/{id}/undo
//	POST   /api/stacks/{id}/redo
//	GET    /api/stacks/{id}/render.svg
//	GET    /api/stacks/{id}/export/{format}
//
// Errors are JSON objects {"code": ..., "error": ...} with the status derived
// from the error code.
package server
