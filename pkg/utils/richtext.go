package utils

import (
	"encoding/json"
	"strings"
	"unicode"
)

// DefaultExcerptLength is the budget used for card descriptions.
const DefaultExcerptLength = 150

const ellipsis = "..."

// RichTextNode is one node of a rich-text document. Only the parts needed
// to pull plain text out of paragraphs are modelled.
type RichTextNode struct {
	Type     string          `json:"type"`
	Nodes    []RichTextNode  `json:"nodes,omitempty"`
	TextData *RichTextString `json:"textData,omitempty"`
}

// RichTextString carries the text of a TEXT node.
type RichTextString struct {
	Text string `json:"text"`
}

// RichTextDocument is an ordered list of block nodes.
type RichTextDocument struct {
	Nodes []RichTextNode `json:"nodes"`
}

// ShortDescription extracts a plain-text excerpt of at most max runes from
// either a plain string or a rich-text document. The value may be a
// string, a RichTextDocument, a *RichTextDocument, a decoded JSON object,
// or raw JSON.
func ShortDescription(value any, max int) string {
	if max <= 0 {
		max = DefaultExcerptLength
	}

	var text string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		text = collapseSpaces(v)
	case RichTextDocument:
		text = paragraphText(v)
	case *RichTextDocument:
		if v == nil {
			return ""
		}
		text = paragraphText(*v)
	case json.RawMessage:
		text = paragraphText(decodeDocument(v))
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		text = paragraphText(decodeDocument(raw))
	default:
		return ""
	}

	return truncateWords(text, max)
}

func decodeDocument(raw []byte) RichTextDocument {
	var doc RichTextDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return RichTextDocument{}
	}
	return doc
}

func paragraphText(doc RichTextDocument) string {
	parts := make([]string, 0, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if node.Type != "PARAGRAPH" {
			continue
		}
		if text := collapseSpaces(nodeText(node)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func nodeText(node RichTextNode) string {
	var b strings.Builder
	if node.TextData != nil {
		b.WriteString(node.TextData.Text)
	}
	for _, child := range node.Nodes {
		b.WriteString(nodeText(child))
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateWords cuts text to max runes, backing off to the last word
// boundary inside the budget, and appends an ellipsis when anything was
// dropped.
func truncateWords(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := max
	if !unicode.IsSpace(runes[cut]) {
		for i := cut - 1; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}

	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + ellipsis
}
