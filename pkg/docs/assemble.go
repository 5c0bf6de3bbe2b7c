package docs

import (
	"fmt"
	"strings"
)

// Assemble renders every record as a "Document N:" block, numbered from 1, and
// joins the blocks with a blank line.
func Assemble(records []Record) (string, error) {
	blocks := make([]string, 0, len(records))
	for i, rec := range records {
		body, err := rec.MarshalIndent()
		if err != nil {
			return "", fmt.Errorf("assemble document %d: %w", i+1, err)
		}
		blocks = append(blocks, fmt.Sprintf("Document %d:\n%s", i+1, body))
	}
	return strings.Join(blocks, "\n\n"), nil
}
