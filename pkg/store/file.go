package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// FileStore is a file-based document store for the CLI.
// Documents are stored as indented JSON files, one per id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// DefaultDir returns ~/.config/stackcanvas/stacks.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "stackcanvas", "stacks"), nil
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, DefaultDir is used.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create store dir")
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Get(ctx context.Context, id string) (doc stack.Document, err error) {
	defer func(start time.Time) { observe(ctx, "file", "get", start, err) }(time.Now())

	if err := errs.ValidateID(id); err != nil {
		return stack.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return stack.Document{}, notFound(id)
	}
	if err != nil {
		return stack.Document{}, errs.Wrap(errs.ErrCodeStorage, err, "read document %q", id)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return stack.Document{}, errs.Wrap(errs.ErrCodeStorage, err, "parse document %q", id)
	}
	return doc, nil
}

func (s *FileStore) Put(ctx context.Context, doc stack.Document) (err error) {
	defer func(start time.Time) { observe(ctx, "file", "put", start, err) }(time.Now())

	doc, err = stamp(doc, s.now())
	if err != nil {
		return err
	}
	data, err := stack.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "marshal document %q", doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.docPath(doc.ID), data, 0o600); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write document %q", doc.ID)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(ctx, "file", "delete", start, err) }(time.Now())

	if err := errs.ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.docPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(errs.ErrCodeStorage, err, "remove document %q", id)
	}
	return nil
}

// List reads every document file. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) (out []Summary, err error) {
	defer func(start time.Time) { observe(ctx, "file", "list", start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read store dir")
	}

	out = []Summary{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var doc stack.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		out = append(out, Summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for document files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
