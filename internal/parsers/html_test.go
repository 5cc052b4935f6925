package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML_Parse(t *testing.T) {
	content := []byte(`<!DOCTYPE html>
<html>
<head>
  <title>Release Notes</title>
  <style>body { color: red; }</style>
</head>
<body>
  <h1>Release Notes</h1>
  <p>Highlights of this release.</p>
  <h2>Fixes</h2>
  <p>Fixed the &amp; escaping bug.</p>
  <script>console.log("noise")</script>
</body>
</html>`)

	doc, err := NewHTML().Parse(context.Background(), "notes.html", content)
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", doc.Title)
	require.Len(t, doc.Sections, 2)

	assert.Equal(t, "Release Notes", doc.Sections[0].Title)
	assert.Equal(t, 1, doc.Sections[0].Level)
	assert.Contains(t, doc.Sections[0].Content, "Highlights of this release.")

	assert.Equal(t, "Fixes", doc.Sections[1].Title)
	assert.Equal(t, 2, doc.Sections[1].Level)
	assert.Contains(t, doc.Sections[1].Content, "Fixed the & escaping bug.")

	assert.NotContains(t, doc.RawText, "<p>")
	assert.NotContains(t, doc.RawText, "console.log")
	assert.NotContains(t, doc.RawText, "color: red")
}

func TestHTML_Parse_NoHeadings(t *testing.T) {
	content := []byte(`<html><body><p>One paragraph.</p><p>Another.</p></body></html>`)

	doc, err := NewHTML().Parse(context.Background(), "plain.html", content)
	require.NoError(t, err)

	assert.Equal(t, "plain", doc.Title, "no title tag falls back to filename")
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "", doc.Sections[0].Title)
	assert.Contains(t, doc.Sections[0].Content, "One paragraph.")
	assert.Contains(t, doc.Sections[0].Content, "Another.")
}

func TestHTML_Parse_Empty(t *testing.T) {
	doc, err := NewHTML().Parse(context.Background(), "empty.html", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)

	_, err = NewHTML().Parse(context.Background(), "nil.html", nil)
	assert.Error(t, err)
}
