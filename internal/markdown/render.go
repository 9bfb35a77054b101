package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"

	"github.com/malonaz/carscout/internal/view"
)

// Renderer renders markdown for the terminal.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
	cache   map[string]string
}

// NewRenderer creates a new markdown renderer wrapping at width.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		glamour: gr,
		width:   width,
		cache:   map[string]string{},
	}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// SetWidth updates the renderer width, recreating internals if needed.
func (r *Renderer) SetWidth(width int) error {
	if r.width == width {
		return nil
	}
	newRenderer, err := NewRenderer(width)
	if err != nil {
		return err
	}
	*r = *newRenderer
	return nil
}

// Render renders markdown content. Output is cached per content.
func (r *Renderer) Render(content string) string {
	if rendered, ok := r.cache[content]; ok {
		return rendered
	}
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	rendered = strings.Trim(rendered, "\n")
	r.cache[content] = rendered
	return rendered
}

// Analysis renders analysis paragraphs, emphasized ones in bold.
func (r *Renderer) Analysis(paragraphs []view.Paragraph) string {
	if len(paragraphs) == 0 {
		return ""
	}
	return r.Render(Analysis(paragraphs))
}

// Analysis returns the markdown source for analysis paragraphs.
// Line breaks inside a paragraph become hard breaks.
func Analysis(paragraphs []view.Paragraph) string {
	blocks := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		text := strings.Join(view.Lines(paragraph.Text), "  \n")
		if paragraph.Emphasized {
			text = "**" + text + "**"
		}
		blocks = append(blocks, text)
	}
	return strings.Join(blocks, "\n\n")
}

// customStyle returns a modified glamour style for cleaner output.
func customStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	style.Paragraph.BlockPrefix = ""
	style.Paragraph.BlockSuffix = ""
	return style
}
