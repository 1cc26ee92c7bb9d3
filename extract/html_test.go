package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/docvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Quarterly Update</title><style>body { color: red; }</style></head>
<body>
  <nav id="menu">Home About</nav>
  <div id="intro">Welcome to the update.</div>
  <main id="content"><p>Revenue grew.</p><p>Costs fell.</p></main>
  <div id="content">Not the main element.</div>
  <script>var tracking = true;</script>
  <footer id="foot">Copyright</footer>
</body>
</html>`

func TestHTMLExtractor_SelectorsInOrder(t *testing.T) {
	h := &HTMLExtractor{Selectors: []ElementSelector{
		{Element: "main", ID: "content"},
		{Element: "div", ID: "intro"},
	}}

	docs, err := h.Extract(context.Background(), "page.html", []byte(samplePage))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Revenue grew.Costs fell.\nWelcome to the update.", docs[0].PageContent)
	assert.NotContains(t, docs[0].PageContent, "Home")
	assert.NotContains(t, docs[0].PageContent, "Not the main element")
	assert.Equal(t, "Quarterly Update", docs[0].Metadata[core.MetaTitle])
}

func TestHTMLExtractor_UnmatchedSelectorContributesNothing(t *testing.T) {
	h := &HTMLExtractor{Selectors: []ElementSelector{
		{Element: "section", ID: "missing"},
		{Element: "footer", ID: "foot"},
	}}

	docs, err := h.Extract(context.Background(), "page.html", []byte(samplePage))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Copyright", docs[0].PageContent)
}

func TestHTMLExtractor_Separator(t *testing.T) {
	h := &HTMLExtractor{
		Selectors: []ElementSelector{{Element: "main", ID: "content"}},
		Separator: " | ",
	}

	docs, err := h.Extract(context.Background(), "page.html", []byte(samplePage))
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew. | Costs fell.", docs[0].PageContent)
}

func TestHTMLExtractor_AllVisibleText(t *testing.T) {
	docs, err := (&HTMLExtractor{}).Extract(context.Background(), "page.html", []byte(samplePage))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	text := docs[0].PageContent
	assert.Contains(t, text, "Welcome to the update.")
	assert.Contains(t, text, "Revenue grew.")
	assert.Contains(t, text, "Copyright")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
	assert.Equal(t, strings.TrimSpace(text), text)
}

func TestHTMLExtractor_NoTitle(t *testing.T) {
	docs, err := (&HTMLExtractor{}).Extract(context.Background(), "bare.html", []byte("<p>  just text  </p>"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "just text", docs[0].PageContent)
	assert.Equal(t, "", docs[0].Metadata[core.MetaTitle])
}

func TestRegistry_HTMLOptions(t *testing.T) {
	r := NewRegistry(WithHTMLSelectors(ElementSelector{Element: "div", ID: "intro"}))

	docs, err := r.Load(context.Background(), "/vault/unprocessed/page.html", []byte(samplePage))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Welcome to the update.", docs[0].PageContent)
	assert.Equal(t, "page.html", docs[0].Metadata[core.MetaFileName])
}

func TestParseElementSelector(t *testing.T) {
	sel, err := ParseElementSelector("main=main-content")
	require.NoError(t, err)
	assert.Equal(t, ElementSelector{Element: "main", ID: "main-content"}, sel)
	assert.Equal(t, "main=main-content", sel.String())

	for _, bad := range []string{"", "main", "=id", "main="} {
		_, err := ParseElementSelector(bad)
		assert.ErrorIs(t, err, ErrInvalidSelector, bad)
	}
}
