package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

func sampleProducts() []scraper.Product {
	return []scraper.Product{
		{Name: "Widget - Competitor 1", URL: "https://a.example/w", Price: "£19.99", OriginalProduct: "Widget", OurPrice: "18.50"},
		{Name: `Say "hi", Gadget`, URL: "https://b.example/g", Price: "Price not found", Error: "HTTP 404: Not Found"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleProducts()))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,url,price,originalProduct,ourPrice,error", lines[0])
	assert.Equal(t, `"Widget - Competitor 1","https://a.example/w","£19.99","Widget","18.50",""`, lines[1])
	assert.Equal(t, `"Say ""hi"", Gadget","https://b.example/g","Price not found","","","HTTP 404: Not Found"`, lines[2])
}

func TestCSVColumns_FirstSeenOrder(t *testing.T) {
	products := []scraper.Product{
		{Name: "a", URL: "u", Error: "boom"},
		{Name: "b", URL: "u", OurPrice: "1.00"},
	}
	assert.Equal(t, []string{"name", "url", "price", "error", "ourPrice"}, CSVColumns(products))
	assert.Equal(t, []string{"name", "url", "price"}, CSVColumns(nil))
}

func TestCSVRoundTrip(t *testing.T) {
	products := sampleProducts()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, products))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, products, parsed)
}

func TestReadCSV_Empty(t *testing.T) {
	products, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleProducts()[:1]))

	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"name\": "))

	var decoded []scraper.Product
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleProducts()[:1], decoded)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleProducts()))
	assert.Contains(t, buf.String(), "original_product: Widget")

	var decoded []scraper.Product
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleProducts(), decoded)
}

func TestExcelWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelWriter(DefaultExcelConfig()).Write(&buf, sampleProducts()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultExcelSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "url", "price", "originalProduct", "ourPrice", "error"}, rows[0])
	assert.Equal(t, "£19.99", rows[1][2])
	assert.Equal(t, "HTTP 404: Not Found", rows[2][5])

	styleID, err := f.GetCellStyle(DefaultExcelSheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestParseFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":      FormatCSV,
		"CSV":   FormatCSV,
		"json":  FormatJSON,
		"yml":   FormatYAML,
		"excel": FormatXLSX,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, DetectFormat("out/results.json"))
	assert.Equal(t, FormatCSV, DetectFormat("results.txt"))
}

func TestManager(t *testing.T) {
	m, err := NewManager("xlsx")
	require.NoError(t, err)
	assert.Equal(t, "price-comparison-results.xlsx", m.FileName())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", m.ContentType())

	m, err = NewManager("csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", m.ContentType())
	assert.Equal(t, "price-comparison-results.csv", m.FileName())

	data, err := m.Render(sampleProducts())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("name,url,price")))

	_, err = NewManager("xml")
	assert.Error(t, err)
}

func TestManager_WriteFile(t *testing.T) {
	m, err := NewManager("json")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "results.json")
	require.NoError(t, m.WriteFile(path, sampleProducts()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []scraper.Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}

func TestManager_WriteFileFailureIsOutputError(t *testing.T) {
	m, err := NewManager("csv")
	require.NoError(t, err)

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err = m.WriteFile(filepath.Join(blocker, "results.csv"), sampleProducts())
	require.Error(t, err)
	assert.Equal(t, errors.KindOutput, errors.KindOf(err))
	assert.Equal(t, 5, errors.ExitCode(err))
	assert.Contains(t, err.Error(), "results.csv")
}
