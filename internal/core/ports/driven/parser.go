package driven

import "context"

// DocumentParser extracts text and structure from one document format.
// Parsers are external collaborators to the core: the ingestion
// pipeline selects one per file by extension and priority.
type DocumentParser interface {
	// Extensions returns the file extensions this parser handles,
	// lower case with leading dot (".md", ".txt").
	Extensions() []string

	// Priority breaks ties when multiple parsers claim an extension.
	// Higher wins.
	Priority() int

	// Parse extracts the document title, sections and raw text.
	Parse(ctx context.Context, path string, content []byte) (*ParsedDocument, error)
}

// ParsedSection is one titled region of a parsed document.
type ParsedSection struct {
	// Title is the section heading, empty for untitled leading text.
	Title string

	// Content is the section body text.
	Content string

	// Level is the heading depth (1 = top level).
	Level int
}

// ParsedDocument is the format-independent result of parsing.
type ParsedDocument struct {
	// Title is the document title.
	Title string

	// Sections are the titled regions in document order. A document
	// without headings has a single untitled section.
	Sections []ParsedSection

	// RawText is the full extracted text.
	RawText string

	// Metadata contains parser-specific key-value pairs.
	Metadata map[string]string
}

// ParserRegistry resolves a parser for a file extension.
type ParserRegistry interface {
	// Register adds a parser for its declared extensions.
	Register(parser DocumentParser)

	// ForExtension returns the highest-priority parser claiming the
	// extension, or domain.ErrUnsupportedType.
	ForExtension(ext string) (DocumentParser, error)

	// Extensions returns all registered extensions.
	Extensions() []string
}
