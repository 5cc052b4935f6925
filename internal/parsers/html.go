package parsers

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure HTML implements the interface.
var _ driven.DocumentParser = (*HTML)(nil)

// HTML handles HTML documents. Tags are stripped; h1-h3 headings
// delimit sections.
type HTML struct{}

// NewHTML creates a new HTML parser.
func NewHTML() *HTML {
	return &HTML{}
}

// Extensions returns the file extensions this parser handles.
func (p *HTML) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (p *HTML) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

var (
	titleTagPattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headTagPattern  = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	scriptPattern   = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	headingTag      = regexp.MustCompile(`(?is)<h([1-3])[^>]*>(.*?)</h[1-3]>`)
	anyTagPattern   = regexp.MustCompile(`(?s)<[^>]+>`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// Parse strips markup and splits at h1-h3 headings.
func (p *HTML) Parse(_ context.Context, path string, content []byte) (*driven.ParsedDocument, error) {
	if content == nil {
		return nil, domain.ErrInvalidInput
	}

	raw := string(content)

	title := ""
	if m := titleTagPattern.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(stripTags(m[1]))
	}
	if title == "" {
		title = titleFromPath(path)
	}

	body := headTagPattern.ReplaceAllString(raw, "")
	body = scriptPattern.ReplaceAllString(body, "")

	// Mark heading boundaries before stripping the remaining tags so
	// sections survive the flattening.
	const marker = "\x00§\x00"
	body = headingTag.ReplaceAllString(body, marker+"$1:$2"+marker)
	body = stripTags(body)

	// Split alternates between body text (even indexes) and heading
	// specs "level:text" (odd indexes).
	var sections []driven.ParsedSection
	current := driven.ParsedSection{}
	for i, part := range strings.Split(body, marker) {
		if i%2 == 0 {
			content := tidyText(part)
			if content != "" || current.Title != "" {
				current.Content = content
				sections = append(sections, current)
			}
			continue
		}
		level, text := 1, part
		if len(part) > 2 && part[1] == ':' {
			level = int(part[0] - '0')
			text = part[2:]
		}
		current = driven.ParsedSection{Title: tidyText(text), Level: level}
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
		Metadata: map[string]string{"format": "html"},
	}, nil
}

// stripTags removes markup and decodes entities.
func stripTags(s string) string {
	s = anyTagPattern.ReplaceAllString(s, " ")
	return html.UnescapeString(s)
}

// tidyText collapses intra-line whitespace and blank-line runs.
func tidyText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankRunPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
