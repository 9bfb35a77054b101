package view

import "strings"

// emphasisMarkers are the ordinal prefixes that mark an analysis paragraph as a highlight.
var emphasisMarkers = []string{"1.", "2.", "3.", "4.", "5."}

// Paragraph is one blank-line-delimited block of analysis text.
type Paragraph struct {
	Text       string
	Emphasized bool
}

// Paragraphs splits analysis text on blank lines. Blocks are trimmed and empty ones dropped.
func Paragraphs(analysis string) []Paragraph {
	var paragraphs []Paragraph
	for _, block := range strings.Split(normalizeNewlines(analysis), "\n\n") {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, Paragraph{Text: text, Emphasized: isEmphasized(text)})
	}
	return paragraphs
}

func isEmphasized(text string) bool {
	for _, marker := range emphasisMarkers {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	return false
}

// Lines splits message text on newlines so each surface can render explicit line breaks.
func Lines(text string) []string {
	return strings.Split(normalizeNewlines(text), "\n")
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
