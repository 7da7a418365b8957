package stack

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal encodes a document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Write encodes a document as indented JSON to w.
func Write(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a document to path with 0644 permissions.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(doc, f)
}

// Read decodes and validates a document.
//
// Bare states (a JSON object with "nodes"/"containers" at the top level) are
// accepted too and wrapped in a new document.
func Read(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal is Read for in-memory data.
func Unmarshal(data []byte) (Document, error) {
	var probe struct {
		State *json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}

	var doc Document
	if probe.State != nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("decode: %w", err)
		}
	} else {
		var s State
		if err := json.Unmarshal(data, &s); err != nil {
			return Document{}, fmt.Errorf("decode: %w", err)
		}
		doc = NewDocument(s)
	}

	if err := doc.State.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ReadFile reads and validates a document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
