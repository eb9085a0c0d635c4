package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FindAdapter(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "wikipedia", r.FindAdapter("https://en.wikipedia.org/wiki/Laksa", "text/html").Name())
	assert.Equal(t, "news", r.FindAdapter("https://www.reuters.com/world/some-story", "text/html").Name())
	assert.Equal(t, "news", r.FindAdapter("https://local.example/news/flood-2024", "text/html").Name())
	assert.Equal(t, "generic", r.FindAdapter("https://example.com/blog/post", "text/html").Name())
	assert.Equal(t, "generic", r.FindAdapter("https://notreuters.com/x", "text/html").Name())
}

func TestGenericAdapter_PrefersArticleParagraphs(t *testing.T) {
	page := `<html><head><title>Plain title</title>
<meta property="og:title" content="Vaccine trial results"></head>
<body>
<nav><p>Home | World | Science</p></nav>
<article>
  <p>Scientists confirmed yesterday that the new vaccine is 95% effective.</p>
  <p>The study enrolled 40,000 volunteers.</p>
</article>
<p>Subscribe to our newsletter.</p>
<script>var x = "ignored";</script>
</body></html>`

	article, err := NewRegistry().Extract(page, "https://example.com/a", "text/html")
	require.NoError(t, err)

	assert.Equal(t, "Vaccine trial results", article.Title)
	assert.Equal(t, "generic", article.Adapter)
	assert.Contains(t, article.Text, "95% effective")
	assert.Contains(t, article.Text, "40,000 volunteers")
	assert.NotContains(t, article.Text, "newsletter")
	assert.NotContains(t, article.Text, "ignored")
}

func TestGenericAdapter_FallsBackToVisibleText(t *testing.T) {
	page := `<html><body><div>Only a div with text here.</div><style>.x{}</style></body></html>`

	article, err := NewRegistry().Extract(page, "https://example.com/b", "text/html")
	require.NoError(t, err)
	assert.Equal(t, "Only a div with text here.", article.Text)
}

func TestWikipediaAdapter_LeadSection(t *testing.T) {
	page := `<html><body>
<h1 id="firstHeading">Laksa</h1>
<div id="mw-content-text"><div class="mw-parser-output">
  <p>Laksa is a spicy noodle soup.<sup class="reference">[1]</sup></p>
  <p>It is popular in Malaysia.</p>
  <h2>History</h2>
  <p>Later history text.</p>
</div></div>
</body></html>`

	article, err := NewRegistry().Extract(page, "https://en.wikipedia.org/wiki/Laksa", "text/html")
	require.NoError(t, err)

	assert.Equal(t, "Laksa", article.Title)
	assert.Equal(t, "Laksa is a spicy noodle soup.\nIt is popular in Malaysia.", article.Text)
}

func TestNewsAdapter_ArticleBody(t *testing.T) {
	page := `<html><head><title>Site | Storm closes port</title></head><body>
<h1>Storm closes port</h1>
<div itemprop="articleBody">
  <p>The port authority closed all berths on Tuesday, a spokesperson said.</p>
  <figure><figcaption><p>Waves hit the harbour wall.</p></figcaption></figure>
  <p>Winds reached 120 km/h according to the met office.</p>
</div>
<div class="related-stories"><p>Read more: ten best beaches</p></div>
</body></html>`

	article, err := NewRegistry().Extract(page, "https://apnews.com/article/storm-port", "text/html")
	require.NoError(t, err)

	assert.Equal(t, "news", article.Adapter)
	assert.Equal(t, "Storm closes port", article.Title)
	assert.Equal(t, "The port authority closed all berths on Tuesday, a spokesperson said.\nWinds reached 120 km/h according to the met office.", article.Text)
}
