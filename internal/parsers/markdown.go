package parsers

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Markdown implements the interface.
var _ driven.DocumentParser = (*Markdown)(nil)

// Markdown handles Markdown documents. Headings delimit sections so
// chunks keep their section-title association.
type Markdown struct{}

// NewMarkdown creates a new Markdown parser.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Extensions returns the file extensions this parser handles.
func (p *Markdown) Extensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

// Priority returns the selection priority.
func (p *Markdown) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

// Parse splits the document at headings. Text before the first heading
// becomes an untitled leading section. The first H1 is the document
// title; the filename is the fallback.
func (p *Markdown) Parse(_ context.Context, path string, content []byte) (*driven.ParsedDocument, error) {
	if content == nil {
		return nil, domain.ErrInvalidInput
	}

	raw := string(content)
	lines := strings.Split(raw, "\n")

	var sections []driven.ParsedSection
	current := driven.ParsedSection{}
	var body strings.Builder
	title := ""

	flush := func() {
		content := strings.TrimSpace(stripInlineMarkdown(body.String()))
		if content != "" || current.Title != "" {
			current.Content = content
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}

		flush()
		level := len(m[1])
		heading := strings.TrimSpace(m[2])
		if level == 1 && title == "" {
			title = heading
		}
		current = driven.ParsedSection{Title: heading, Level: level}
	}
	flush()

	if title == "" {
		title = titleFromPath(path)
	}

	var text strings.Builder
	for i, section := range sections {
		if i > 0 {
			text.WriteString("\n\n")
		}
		if section.Title != "" {
			text.WriteString(section.Title)
			text.WriteString("\n")
		}
		text.WriteString(section.Content)
	}

	return &driven.ParsedDocument{
		Title:    title,
		Sections: sections,
		RawText:  text.String(),
		Metadata: map[string]string{"format": "markdown"},
	}, nil
}

var (
	codeFencePattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe     = regexp.MustCompile("`([^`]*)`")
	linkPattern      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisPattern  = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)` + `(\*{1,3}|_{1,3})`)
)

// stripInlineMarkdown simplifies markdown formatting to plain text.
// Code fences are kept as their contents; links keep their label.
func stripInlineMarkdown(text string) string {
	text = codeFencePattern.ReplaceAllStringFunc(text, func(block string) string {
		block = strings.TrimPrefix(block, "```")
		block = strings.TrimSuffix(block, "```")
		if idx := strings.Index(block, "\n"); idx >= 0 {
			block = block[idx+1:]
		}
		return block
	})
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = emphasisPattern.ReplaceAllString(text, "$2")
	return text
}
