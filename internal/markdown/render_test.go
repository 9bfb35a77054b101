package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/carscout/internal/view"
)

func TestAnalysisSource(t *testing.T) {
	paragraphs := view.Paragraphs("Market overview.\nPrices are stable.\n\n1. Best pick: 2019 Civic")
	source := Analysis(paragraphs)
	assert.Equal(t, "Market overview.  \nPrices are stable.\n\n**1. Best pick: 2019 Civic**", source)
}

func TestRendererCachesAndResizes(t *testing.T) {
	renderer, err := NewRenderer(40)
	require.NoError(t, err)

	first := renderer.Render("hello")
	assert.NotEmpty(t, first)
	assert.Equal(t, first, renderer.Render("hello"))
	assert.Empty(t, renderer.Analysis(nil))

	require.NoError(t, renderer.SetWidth(60))
	assert.Equal(t, 60, renderer.Width())
	assert.NotEmpty(t, renderer.Analysis([]view.Paragraph{{Text: "1. Pick", Emphasized: true}}))
}
