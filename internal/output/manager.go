// internal/output/manager.go
package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/valpere/PriceScrapexter/internal/errors"
	"github.com/valpere/PriceScrapexter/internal/scraper"
)

// Manager writes products in a configured format.
type Manager struct {
	format OutputFormat
	writer Writer
}

// NewManager creates a manager for the named format.
func NewManager(format string) (*Manager, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	m := &Manager{format: f}
	switch f {
	case FormatJSON:
		m.writer = WriterFunc(WriteJSON)
	case FormatYAML:
		m.writer = WriterFunc(WriteYAML)
	case FormatXLSX:
		m.writer = NewExcelWriter(DefaultExcelConfig())
	default:
		m.writer = WriterFunc(WriteCSV)
	}
	return m, nil
}

// Format returns the configured format.
func (m *Manager) Format() OutputFormat {
	return m.format
}

// ContentType returns the MIME type of the output.
func (m *Manager) ContentType() string {
	return m.format.ContentType()
}

// FileName returns the default download name.
func (m *Manager) FileName() string {
	return m.format.FileName()
}

// Write serializes products to w.
func (m *Manager) Write(w io.Writer, products []scraper.Product) error {
	return m.writer.Write(w, products)
}

// Render serializes products into memory.
func (m *Manager) Render(products []scraper.Product) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Write(&buf, products); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes products to filename, creating parent directories.
// "-" writes to stdout. Failures are *errors.OutputError.
func (m *Manager) WriteFile(filename string, products []scraper.Product) error {
	if filename == "" || filename == "-" {
		if err := m.Write(os.Stdout, products); err != nil {
			return &errors.OutputError{Path: "stdout", Err: err}
		}
		return nil
	}

	if err := m.writeFile(filename, products); err != nil {
		return &errors.OutputError{Path: filename, Err: err}
	}
	return nil
}

func (m *Manager) writeFile(filename string, products []scraper.Product) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return eris.Wrapf(err, "failed to create output directory %s", dir)
	}

	f, err := os.Create(filename)
	if err != nil {
		return eris.Wrap(err, "failed to create output file")
	}

	if err := m.Write(f, products); err != nil {
		f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "failed to close output file")
}
