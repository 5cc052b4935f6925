package parsers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.DocumentParser = (*Plaintext)(nil)

// Plaintext handles plain text documents. It is the fallback parser:
// the whole file becomes one untitled section.
type Plaintext struct{}

// NewPlaintext creates a new plain text parser.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Extensions returns the file extensions this parser handles.
func (p *Plaintext) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json", ".yaml", ".yml", ".toml"}
}

// Priority returns the selection priority.
func (p *Plaintext) Priority() int {
	return 5 // Fallback parser
}

// Parse extracts the raw text as a single untitled section.
func (p *Plaintext) Parse(_ context.Context, path string, content []byte) (*driven.ParsedDocument, error) {
	if content == nil {
		return nil, domain.ErrInvalidInput
	}

	text := string(content)

	return &driven.ParsedDocument{
		Title:   titleFromPath(path),
		RawText: text,
		Sections: []driven.ParsedSection{
			{Content: text},
		},
		Metadata: map[string]string{"format": "plaintext"},
	}, nil
}

// titleFromPath extracts a human-readable title from a file path.
func titleFromPath(path string) string {
	filename := filepath.Base(path)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
