// internal/output/excel.go
package output

import (
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/valpere/PriceScrapexter/internal/scraper"
)

const (
	// DefaultExcelSheetName names the single results sheet.
	DefaultExcelSheetName = "Price Comparison"
	// DefaultExcelMaxCellLength is the maximum characters in a single Excel cell
	DefaultExcelMaxCellLength = 32767

	minColumnWidth = 10
	maxColumnWidth = 80
)

// ExcelConfig configuration for Excel output
type ExcelConfig struct {
	SheetName  string `json:"sheet_name"`
	AutoFilter bool   `json:"auto_filter"`
	FreezePane bool   `json:"freeze_pane"`
}

// DefaultExcelConfig returns the workbook layout used by exports.
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{SheetName: DefaultExcelSheetName, AutoFilter: true, FreezePane: true}
}

// ExcelWriter renders products into a workbook with the same columns as
// the CSV export.
type ExcelWriter struct {
	config ExcelConfig
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(config ExcelConfig) *ExcelWriter {
	if config.SheetName == "" {
		config.SheetName = DefaultExcelSheetName
	}
	return &ExcelWriter{config: config}
}

// Write builds the workbook and streams it to w.
func (ew *ExcelWriter) Write(w io.Writer, products []scraper.Product) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := ew.config.SheetName
	file.SetSheetName(file.GetSheetName(0), sheet)

	columns := CSVColumns(products)
	widths := make([]int, len(columns))

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return eris.Wrap(err, "failed to write header row")
	}

	for r, p := range products {
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			v := truncateCell(fieldValue(p, c))
			row[i] = v
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return eris.Wrap(err, "invalid cell reference")
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return eris.Wrapf(err, "failed to write row %d", r+2)
		}
	}

	if err := ew.applyFormatting(file, sheet, widths, len(products)); err != nil {
		return err
	}

	return eris.Wrap(file.Write(w), "failed to write workbook")
}

// applyFormatting styles the header, sizes columns, freezes the header row
// and adds an auto-filter over the used range.
func (ew *ExcelWriter) applyFormatting(file *excelize.File, sheet string, widths []int, rows int) error {
	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return eris.Wrap(err, "failed to create header style")
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(widths), 1)
	if err != nil {
		return eris.Wrap(err, "invalid header range")
	}
	if err := file.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return eris.Wrap(err, "failed to style header")
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return eris.Wrap(err, "invalid column")
		}
		if err := file.SetColWidth(sheet, col, col, float64(clamp(w+2, minColumnWidth, maxColumnWidth))); err != nil {
			return eris.Wrap(err, "failed to set column width")
		}
	}

	if ew.config.FreezePane {
		if err := file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return eris.Wrap(err, "failed to freeze header row")
		}
	}

	if ew.config.AutoFilter {
		lastCell, err := excelize.CoordinatesToCellName(len(widths), rows+1)
		if err != nil {
			return eris.Wrap(err, "invalid filter range")
		}
		if err := file.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
			return eris.Wrap(err, "failed to add auto-filter")
		}
	}

	return nil
}

func truncateCell(s string) string {
	if utf8.RuneCountInString(s) <= DefaultExcelMaxCellLength {
		return s
	}
	return string([]rune(s)[:DefaultExcelMaxCellLength])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
