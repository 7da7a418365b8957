// Package store persists stack documents.
//
// All backends implement [Store]:
//   - [MemoryStore]: in-process map for tests and throwaway servers
//   - [FileStore]: one JSON file per document, for the CLI
//   - [RedisStore]: JSON values in Redis, for multi-instance servers
//   - [MongoStore]: BSON documents in MongoDB
//
// Use [Open] to pick a backend from configuration:
//
//	st, err := store.Open(ctx, store.Config{Backend: "redis", Redis: store.RedisConfig{Addr: "localhost:6379"}})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	doc, err := st.Get(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // start a new stack
//	}
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/observability"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by id. Missing ids return an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, id string) (stack.Document, error)

	// Put creates or replaces a document. UpdatedAt is stamped by the store
	// and CreatedAt is set when zero.
	Put(ctx context.Context, doc stack.Document) error

	// Delete removes a document. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of every document, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend connections.
	Close() error
}

// Summary is the listing view of a stored document.
type Summary struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Nodes      int       `json:"nodes" bson:"nodes"`
	Containers int       `json:"containers" bson:"containers"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// Summarize builds the listing view of doc.
func Summarize(doc stack.Document) Summary {
	return Summary{
		ID:         doc.ID,
		Name:       doc.State.Name,
		Nodes:      doc.State.ComponentCount(),
		Containers: len(doc.State.Containers),
		UpdatedAt:  doc.UpdatedAt,
	}
}

// notFound wraps ErrNotFound with the id and a NOT_FOUND code.
func notFound(id string) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "document %q", id)
}

// stamp validates doc's id and sets its timestamps.
func stamp(doc stack.Document, now time.Time) (stack.Document, error) {
	if err := errs.ValidateID(doc.ID); err != nil {
		return stack.Document{}, err
	}
	now = now.UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return doc, nil
}

// sortSummaries orders by UpdatedAt descending, then id.
func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}

// observe reports one backend call to the store hooks.
func observe(ctx context.Context, backend, op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	observability.Store().OnOperation(ctx, backend, op, time.Since(start), err)
}
