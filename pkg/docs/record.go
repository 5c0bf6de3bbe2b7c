// Package docs loads the static JSON document collection used as RAG context
// and assembles it into a single prompt block.
//
// Retrieval here is full-corpus inclusion: every record in the collection is
// always part of the context. There is no ranking and no similarity search, so
// the approach only suits small, fixed collections.
package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// DefaultFields is the allow-list applied when none is configured.
var DefaultFields = []string{
	"/state",
	"/code",
	"/nickname",
	"/website",
	"/admission_date",
	"/admission_number",
	"/capital_city",
	"/capital_url",
	"/population",
	"/population_rank",
	"/constitution_url",
	"/twitter_url",
	"/name",
	"/who",
	"/address",
	"/school",
}

// Field is one allow-listed value of a record.
type Field struct {
	// Path is the JSON pointer the value was read from, e.g. "/capital_city".
	Path string

	// Key is the name the value is rendered under.
	Key string

	Value any
}

// Record is a source object projected onto the allow-list. Fields keep
// allow-list order.
type Record struct {
	Fields []Field
}

// Project turns a decoded JSON document into records. An array root yields one
// record per element and an object root yields a single record. Records with no
// allow-listed field are dropped.
func Project(root any, fields []string) []Record {
	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	default:
		items = []any{v}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		for _, path := range fields {
			val, ok := resolve(item, path)
			if !ok {
				continue
			}
			rec.Fields = append(rec.Fields, Field{Path: path, Key: keyFor(path), Value: val})
		}
		if len(rec.Fields) > 0 {
			records = append(records, rec)
		}
	}
	return records
}

// MarshalIndent renders the record as a JSON object indented by two spaces.
func (r Record) MarshalIndent() (string, error) {
	if len(r.Fields) == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range r.Fields {
		key, err := encode(f.Key, "")
		if err != nil {
			return "", err
		}
		val, err := encode(f.Value, "  ")
		if err != nil {
			return "", fmt.Errorf("encode field %s: %w", f.Path, err)
		}

		buf.WriteString("  ")
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(val)
		if i < len(r.Fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

func encode(v any, prefix string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func keyFor(path string) string {
	return strings.TrimPrefix(path, "/")
}

// resolve reads an RFC 6901 JSON pointer from a decoded document. A key
// holding JSON null resolves to a nil value.
func resolve(doc any, pointer string) (any, bool) {
	p, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, false
	}
	val, _, err := p.Get(doc)
	if err != nil {
		return nil, false
	}
	return val, true
}
