package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

const sampleCatalog = `product_name,our_price,competitor_url_1,competitor_url_2,competitor_url_3
Widget,19.99,https://a.example/widget,,https://c.example/widget
Gadget,5.00,https://b.example/gadget
,,https://orphan.example/x

Gizmo,,,,
`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Widget", rows[0].ProductName)
	assert.Equal(t, "19.99", rows[0].OurPrice)
	assert.Equal(t, []string{"https://a.example/widget", "https://c.example/widget"}, rows[0].CompetitorURLs())
	assert.Equal(t, "https://b.example/gadget", rows[1].CompetitorURL1)
	assert.Empty(t, rows[3].CompetitorURLs())
}

func TestParse_BOMAndReorderedColumns(t *testing.T) {
	data := "\ufeffcompetitor_url_1, product_name\nhttps://a.example/p, Thing\n"

	rows, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Thing", rows[0].ProductName)
	assert.Equal(t, "https://a.example/p", rows[0].CompetitorURL1)
}

func TestParse_MissingProductName(t *testing.T) {
	_, err := Parse(strings.NewReader("name,url\nA,https://a.example\n"))
	require.Error(t, err)
	assert.Equal(t, `CSV must include "product_name" column`, err.Error())
	assert.True(t, errors.IsInput(err))

	_, err = Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingProductName)
}

func TestToProducts(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	products := ToProducts(rows)
	require.Len(t, products, 3)

	assert.Equal(t, scraper.Product{
		Name:            "Widget - Competitor 1",
		URL:             "https://a.example/widget",
		OriginalProduct: "Widget",
		OurPrice:        "19.99",
	}, products[0])
	// numbering counts non-empty URLs only
	assert.Equal(t, "Widget - Competitor 2", products[1].Name)
	assert.Equal(t, "https://c.example/widget", products[1].URL)
	assert.Equal(t, "Gadget - Competitor 1", products[2].Name)
}

func TestLoad_NoCompetitorURLs(t *testing.T) {
	_, err := Load(strings.NewReader("product_name,our_price\nWidget,1.00\n"))
	assert.ErrorIs(t, err, ErrNoCompetitorURLs)
	assert.Equal(t, 400, errors.HTTPStatus(err))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	products, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	products := make([]scraper.Product, 7)
	batches := Chunk(products, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[2], 1)

	assert.Empty(t, Chunk(nil, 3))
	assert.Len(t, Chunk(products, 0), 7)
}
