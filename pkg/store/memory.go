package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// MemoryStore keeps documents in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]stack.Document
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]stack.Document), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (stack.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return stack.Document{}, notFound(id)
	}
	doc.State = doc.State.Clone()
	return doc, nil
}

func (s *MemoryStore) Put(ctx context.Context, doc stack.Document) error {
	doc, err := stamp(doc, s.now())
	if err != nil {
		return err
	}
	doc.State = doc.State.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, Summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
