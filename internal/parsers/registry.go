// Package parsers provides per-format document parser implementations
// and a registry that selects one per file extension.
package parsers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry maps file extensions to document parsers. When several
// parsers claim the same extension the highest priority wins.
type Registry struct {
	mu      sync.RWMutex
	byExt   map[string]driven.DocumentParser
	parsers []driven.DocumentParser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]driven.DocumentParser),
	}
}

// Register adds a parser for its declared extensions.
func (r *Registry) Register(parser driven.DocumentParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers = append(r.parsers, parser)
	for _, ext := range parser.Extensions() {
		ext = strings.ToLower(ext)
		existing, ok := r.byExt[ext]
		if ok && existing.Priority() >= parser.Priority() {
			continue
		}
		r.byExt[ext] = parser
	}
}

// ForExtension returns the parser claiming the extension.
func (r *Registry) ForExtension(ext string) (driven.DocumentParser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parser, ok := r.byExt[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: no parser for extension %q", domain.ErrUnsupportedType, ext)
	}
	return parser, nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Defaults returns a registry with every built-in parser registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(NewPlaintext())
	r.Register(NewMarkdown())
	r.Register(NewHTML())
	return r
}
