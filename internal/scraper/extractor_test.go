package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/PriceScrapexter/internal/errors"
)

func extract(t *testing.T, html string) (Candidate, error) {
	t.Helper()
	return NewPriceExtractor(nil).ExtractFromHTML(html)
}

func TestExtract_SelectorText(t *testing.T) {
	c, err := extract(t, `<html><body><div class="price">$12.50</div></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "$12.50", c.Value)
	assert.Equal(t, StrategySelector, c.Strategy)
	assert.Equal(t, ".price", c.Source)
}

func TestExtract_SelectorWinsOverPattern(t *testing.T) {
	html := `<body>
		<p>Was £99.99</p>
		<span class="product-price">£49.99</span>
	</body>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "£49.99", c.Value)
	assert.Equal(t, StrategySelector, c.Strategy)
}

func TestExtract_SelectorSkipsInvalidCandidates(t *testing.T) {
	html := `<body>
		<div class="price">Call us</div>
		<div class="price">£5.00</div>
	</body>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "£5.00", c.Value)
}

func TestExtract_SelectorAttributeFallback(t *testing.T) {
	c, err := extract(t, `<body><span itemprop="price" content="29.99"></span></body>`)
	require.NoError(t, err)
	assert.Equal(t, "29.99", c.Value)
	assert.Equal(t, `[itemprop="price"]`, c.Source)
}

func TestExtract_SelectorCollapsesWhitespace(t *testing.T) {
	c, err := extract(t, "<body><div class=\"price\">\n  £\n  19.99\n</div></body>")
	require.NoError(t, err)
	assert.Equal(t, "£ 19.99", c.Value)
}

func TestExtract_Pattern(t *testing.T) {
	c, err := extract(t, `<body><p>Now only £24.99 incl. VAT</p></body>`)
	require.NoError(t, err)
	assert.Equal(t, "£24.99", c.Value)
	assert.Equal(t, StrategyPattern, c.Strategy)
	assert.Equal(t, "gbp-prefix", c.Source)
}

func TestExtract_PatternIgnoresScripts(t *testing.T) {
	html := `<body>
		<script>var tracking = "£5.00";</script>
		<p>Yours for 15 euros</p>
	</body>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "15", c.Value)
	assert.Equal(t, "currency-word", c.Source)
}

func TestExtract_PatternRangeFilter(t *testing.T) {
	html := `<body><p>Call $0.00 or pay $45.00</p></body>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "$45.00", c.Value)
}

func TestExtract_PatternGroupedAmounts(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		source string
	}{
		{"symbol with thousands", `<body><p>Only £1,299.99 today</p></body>`, "£1,299.99", "gbp-prefix"},
		{"euro suffix dotted groups", `<body><p>Jetzt 2.499,00 €</p></body>`, "2.499,00 €", "eur-suffix"},
		{"bare thousands", `<body><p>Total 1,299.99</p></body>`, "1,299.99", "thousands"},
		{"plain number unchanged", `<body><p>Now £1299.99</p></body>`, "£1299.99", "gbp-prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := extract(t, tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Value)
			assert.Equal(t, tt.source, c.Source)

			amount, ok := ParseAmount(c.Value)
			require.True(t, ok)
			assert.Greater(t, amount, 1000.0)
		})
	}
}

func TestExtract_JSONLD(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"Product","offers":{"price":"29.99"}}</script>
	</head><body><h1>Widget</h1></body></html>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "29.99", c.Value)
	assert.Equal(t, StrategyStructured, c.Strategy)
}

func TestExtract_JSONLDVariants(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"offer array number", `{"offers":[{"price":0},{"price":1299}]}`, "1299"},
		{"price specification", `{"offers":{"priceSpecification":{"price":"15.50"}}}`, "15.50"},
		{"top-level array", `[{"@type":"Organization"},{"price":"9.99"}]`, "9.99"},
		{"graph", `{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{"@type":"Product","offers":{"price":"42.00"}}]}`, "42.00"},
		{"price range", `{"priceRange":"£10-£20"}`, "£10-£20"},
		{"decimal precision kept", `{"price":19.90}`, "19.90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<script type="application/ld+json">` + tt.json + `</script><body></body>`
			c, err := extract(t, html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Value)
		})
	}
}

func TestExtract_JSONLDSkipsMalformedBlocks(t *testing.T) {
	html := `<head>
		<script type="application/ld+json">{not json</script>
		<script type="application/ld+json">{"offers":{"price":"7.25"}}</script>
	</head><body></body>`

	var decodeErrors int
	pe := NewPriceExtractor(nil, &StructuredDataStrategy{OnError: func(error) { decodeErrors++ }})
	c, err := pe.ExtractFromHTML(html)
	require.NoError(t, err)
	assert.Equal(t, "7.25", c.Value)
	assert.Equal(t, 1, decodeErrors)
}

func TestExtract_MetaTag(t *testing.T) {
	html := `<html><head>
		<meta property="og:price:amount" content="45.00">
	</head><body><h1>Widget</h1></body></html>`
	c, err := extract(t, html)
	require.NoError(t, err)
	assert.Equal(t, "45.00", c.Value)
	assert.Equal(t, StrategyMeta, c.Strategy)
	assert.Equal(t, `meta[property="og:price:amount"]`, c.Source)
}

func TestExtract_NotFound(t *testing.T) {
	_, err := extract(t, `<html><body><h1>Out of stock</h1></body></html>`)
	assert.ErrorIs(t, err, errors.ErrPriceNotFound)
}

func TestExtract_ExtraSelectorsTakePrecedence(t *testing.T) {
	html := `<body><div class="price">£10.00</div><b id="deal">£8.00</b></body>`
	v := NewPriceValidator()
	pe := NewPriceExtractor(nil, DefaultStrategies(v, []string{"#deal"})...)
	c, err := pe.ExtractFromHTML(html)
	require.NoError(t, err)
	assert.Equal(t, "£8.00", c.Value)
	assert.Equal(t, "#deal", c.Source)
}

func TestVisibleText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<body><style>.p{}</style><p>one</p><noscript>two</noscript><script>three</script></body>`))
	require.NoError(t, err)

	text := visibleText(doc)
	assert.Contains(t, text, "one")
	assert.NotContains(t, text, "two")
	assert.NotContains(t, text, "three")

	// the document itself is untouched
	assert.Equal(t, 1, doc.Find("script").Length())
}
