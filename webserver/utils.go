package webserver

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/malonaz/carscout/internal/view"
)

// formatTurn escapes turn content and turns line breaks into <br>.
func formatTurn(content string) template.HTML {
	lines := view.Lines(content)
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

// paragraphs splits analysis text for display.
func paragraphs(analysis string) []view.Paragraph {
	return view.Paragraphs(analysis)
}

func formatTimestamp(t time.Time, layout string) string {
	return view.FormatTimestamp(t, layout)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn("encoding response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
