package history

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/malonaz/carscout/internal/debug"
)

const maxSize = 500

var log = debug.GetLogger()

// History of submitted chat messages, persisted one entry per line.
type History struct {
	mu      sync.Mutex
	path    string
	entries []string
	// index is the entry being shown, -1 when editing a fresh message.
	index int
	// draft holds the unsent input while navigating.
	draft string
}

// New loads the history at path. An empty path keeps history in memory only.
func New(path string) *History {
	h := &History{path: path, index: -1}
	h.load()
	return h
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) load() {
	if h.path == "" {
		return
	}
	file, err := os.Open(h.path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if entry := unescape(scanner.Text()); entry != "" {
			h.entries = append(h.entries, entry)
		}
	}
	h.trim()
}

func (h *History) save() {
	if h.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		log.Warn("creating history directory", "path", h.path, "error", err)
		return
	}
	file, err := os.Create(h.path)
	if err != nil {
		log.Warn("saving history", "path", h.path, "error", err)
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range h.entries {
		writer.WriteString(escape(entry) + "\n")
	}
	if err := writer.Flush(); err != nil {
		log.Warn("flushing history", "path", h.path, "error", err)
	}
}

func (h *History) trim() {
	if len(h.entries) > maxSize {
		h.entries = h.entries[len(h.entries)-maxSize:]
	}
}

// Add records a submitted message. Repeats of the latest entry are skipped.
func (h *History) Add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.draft = ""
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return
	}
	h.entries = append(h.entries, entry)
	h.trim()
	h.save()
}

// Previous steps back in history. current is the input being edited, restored by Next.
func (h *History) Previous(current string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case len(h.entries) == 0:
		return "", false
	case h.index == -1:
		h.draft = current
		h.index = len(h.entries) - 1
	case h.index > 0:
		h.index--
	default:
		return h.entries[0], false
	}
	return h.entries[h.index], true
}

// Next steps forward in history, ending on the saved draft.
func (h *History) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == -1 {
		return "", false
	}
	h.index++
	if h.index >= len(h.entries) {
		h.index = -1
		return h.draft, true
	}
	return h.entries[h.index], true
}

// Reset stops navigating.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.index = -1
	h.draft = ""
}

func escape(entry string) string {
	entry = strings.ReplaceAll(entry, `\`, `\\`)
	return strings.ReplaceAll(entry, "\n", `\n`)
}

func unescape(line string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' && i+1 < len(line) {
			switch line[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(line[i])
	}
	return b.String()
}
