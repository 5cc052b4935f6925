// Package chunking splits parsed documents into overlapping retrieval
// units and deduplicates them by content hash.
package chunking

import (
	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// DefaultChunkSize is the default window size in characters.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// boundaryTolerance is how far the window end may shift backward to
// land on a sentence or paragraph delimiter instead of splitting
// mid-sentence.
const boundaryTolerance = 120

// Piece is one chunk candidate cut from a document, before hashing and
// dedup. The sequence is ordered and stable: indexes match document order.
type Piece struct {
	// Text is the chunk content, including the overlap repeated from
	// the previous chunk.
	Text string

	// Section is the heading of the section this piece was cut from.
	Section string

	// Index is the ordinal position within the document.
	Index int

	// TotalChunks is the number of pieces cut from the document.
	TotalChunks int
}

// Engine slides a fixed window across document text, advancing by
// chunkSize - overlap each step, shifting window boundaries backward to
// the nearest sentence delimiter within a small tolerance.
type Engine struct {
	chunkSize int
	overlap   int
}

// NewEngine creates a chunking engine. Returns domain.ErrConfiguration
// when chunkSize does not exceed overlap.
func NewEngine(settings domain.ChunkingSettings) (*Engine, error) {
	if settings.ChunkSize == 0 && settings.Overlap == 0 {
		settings = domain.ChunkingSettings{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		chunkSize: settings.ChunkSize,
		overlap:   settings.Overlap,
	}, nil
}

// ChunkSize returns the configured window size.
func (e *Engine) ChunkSize() int {
	return e.chunkSize
}

// Overlap returns the configured overlap.
func (e *Engine) Overlap() int {
	return e.overlap
}

// Split cuts a parsed document into ordered pieces. Section-title
// association is preserved: each piece carries the heading of the
// section it was cut from. An empty document produces zero pieces; a
// document shorter than the chunk size still produces one.
func (e *Engine) Split(doc *driven.ParsedDocument) []Piece {
	if doc == nil {
		return nil
	}

	var pieces []Piece

	sections := doc.Sections
	if len(sections) == 0 && doc.RawText != "" {
		sections = []driven.ParsedSection{{Content: doc.RawText}}
	}

	for _, section := range sections {
		for _, text := range e.window([]rune(section.Content)) {
			pieces = append(pieces, Piece{
				Text:    text,
				Section: section.Title,
			})
		}
	}

	for i := range pieces {
		pieces[i].Index = i
		pieces[i].TotalChunks = len(pieces)
	}

	return pieces
}

// window slides the chunk window across one section's text.
func (e *Engine) window(text []rune) []string {
	if len(text) == 0 {
		return nil
	}

	var out []string
	start := 0

	for start < len(text) {
		end := start + e.chunkSize
		if end >= len(text) {
			out = append(out, string(text[start:]))
			break
		}

		// Prefer ending on a sentence or paragraph delimiter near the
		// window boundary.
		if cut := boundaryBefore(text, end); cut > start {
			end = cut
		}

		out = append(out, string(text[start:end]))

		// The overlap suffix of this chunk repeats at the head of the
		// next one to keep local context.
		next := end - e.overlap
		if next <= start {
			next = start + (e.chunkSize - e.overlap)
		}
		start = next
	}

	return out
}

// boundaryBefore scans backward from pos for a sentence or paragraph
// delimiter within the tolerance. Returns the index just past the
// delimiter, or pos when none is close enough.
func boundaryBefore(text []rune, pos int) int {
	limit := pos - boundaryTolerance
	if limit < 0 {
		limit = 0
	}
	for i := pos - 1; i >= limit; i-- {
		switch text[i] {
		case '\n', '.', '!', '?':
			return i + 1
		}
	}
	return pos
}
