package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Source yields the current document collection.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// FileSource reads a JSON file from disk on every Load.
type FileSource struct {
	Path   string
	Fields []string
}

// NewFileSource creates a FileSource, falling back to DefaultFields when fields
// is empty.
func NewFileSource(path string, fields []string) *FileSource {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &FileSource{Path: path, Fields: fields}
}

// Load reads and projects the file.
func (s *FileSource) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("load documents: parse %s: %w", s.Path, err)
	}

	return Project(root, s.Fields), nil
}
