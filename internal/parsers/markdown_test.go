package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_Parse(t *testing.T) {
	content := []byte(`# User Guide

Welcome to the guide.

## Installation

Run the *installer* and follow [the steps](https://example.com/steps).

## Usage

Call ` + "`lore ask`" + ` to query.
`)

	doc, err := NewMarkdown().Parse(context.Background(), "docs/user_guide.md", content)
	require.NoError(t, err)

	assert.Equal(t, "User Guide", doc.Title)
	require.Len(t, doc.Sections, 3)

	assert.Equal(t, "User Guide", doc.Sections[0].Title)
	assert.Equal(t, 1, doc.Sections[0].Level)
	assert.Equal(t, "Welcome to the guide.", doc.Sections[0].Content)

	assert.Equal(t, "Installation", doc.Sections[1].Title)
	assert.Equal(t, 2, doc.Sections[1].Level)
	assert.Contains(t, doc.Sections[1].Content, "installer")
	assert.Contains(t, doc.Sections[1].Content, "the steps")
	assert.NotContains(t, doc.Sections[1].Content, "https://example.com")
	assert.NotContains(t, doc.Sections[1].Content, "*")

	assert.Equal(t, "Usage", doc.Sections[2].Title)
	assert.Contains(t, doc.Sections[2].Content, "lore ask")
	assert.NotContains(t, doc.Sections[2].Content, "`")
}

func TestMarkdown_Parse_LeadingTextWithoutHeading(t *testing.T) {
	content := []byte("Just a preamble paragraph.\n\n## Later\n\nBody.\n")

	doc, err := NewMarkdown().Parse(context.Background(), "notes.md", content)
	require.NoError(t, err)

	assert.Equal(t, "notes", doc.Title, "no H1 falls back to filename")
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "", doc.Sections[0].Title)
	assert.Equal(t, "Just a preamble paragraph.", doc.Sections[0].Content)
	assert.Equal(t, "Later", doc.Sections[1].Title)
}

func TestMarkdown_Parse_Empty(t *testing.T) {
	doc, err := NewMarkdown().Parse(context.Background(), "empty.md", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)
	assert.Empty(t, doc.RawText)

	_, err = NewMarkdown().Parse(context.Background(), "nil.md", nil)
	assert.Error(t, err)
}

func TestMarkdown_Parse_CodeFenceKeptAsText(t *testing.T) {
	content := []byte("# API\n\n```go\nfunc main() {}\n```\n")

	doc, err := NewMarkdown().Parse(context.Background(), "api.md", content)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Contains(t, doc.Sections[0].Content, "func main()")
	assert.NotContains(t, doc.Sections[0].Content, "```")
}
