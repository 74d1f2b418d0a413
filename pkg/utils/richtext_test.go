package utils

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(text string) RichTextNode {
	return RichTextNode{
		Type: "PARAGRAPH",
		Nodes: []RichTextNode{
			{Type: "TEXT", TextData: &RichTextString{Text: text}},
		},
	}
}

func TestShortDescription_PlainString(t *testing.T) {
	assert.Equal(t, "Short text", ShortDescription("  Short   text ", 50))
	assert.Equal(t, "", ShortDescription(nil, 50))
	assert.Equal(t, "", ShortDescription(42, 50))
}

func TestShortDescription_TruncatesAtWordBoundary(t *testing.T) {
	text := "World class cardiac care in the heart of the Pacific"
	got := ShortDescription(text, 20)

	assert.Equal(t, "World class cardiac...", got)
	assert.LessOrEqual(t, utf8.RuneCountInString(strings.TrimSuffix(got, "...")), 20)
}

func TestShortDescription_HardCutsSingleLongWord(t *testing.T) {
	got := ShortDescription(strings.Repeat("x", 30), 10)
	assert.Equal(t, strings.Repeat("x", 10)+"...", got)
}

func TestShortDescription_RichTextDocument(t *testing.T) {
	doc := RichTextDocument{
		Nodes: []RichTextNode{
			paragraph("First paragraph."),
			{Type: "IMAGE"},
			paragraph("Second  paragraph."),
			{Type: "HEADING", Nodes: []RichTextNode{{Type: "TEXT", TextData: &RichTextString{Text: "Ignored"}}}},
		},
	}

	assert.Equal(t, "First paragraph. Second paragraph.", ShortDescription(doc, 200))
	assert.Equal(t, "First paragraph. Second paragraph.", ShortDescription(&doc, 200))
	assert.Equal(t, "First...", ShortDescription(doc, 12))
}

func TestShortDescription_DecodedJSONDocument(t *testing.T) {
	raw := `{"nodes":[{"type":"PARAGRAPH","nodes":[{"type":"TEXT","textData":{"text":"Hello from the CMS"}}]}]}`

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))

	assert.Equal(t, "Hello from the CMS", ShortDescription(decoded, 100))
	assert.Equal(t, "Hello from the CMS", ShortDescription(json.RawMessage(raw), 100))
}
