// Package importer reads piece lists from CSV, Excel, DXF and YAML files.
// Tabular formats get automatic delimiter detection, flexible column mapping
// and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/sheetfit/internal/model"
)

// ImportResult holds the results of an import operation. Row-level problems
// are collected in Errors and Warnings instead of aborting the import.
type ImportResult struct {
	Rectangles []model.Rectangle
	Errors     []string
	Warnings   []string

	// Set only by job files.
	Name        string
	SheetWidth  float64
	SheetHeight float64
}

// OK reports whether the import produced rectangles without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Rectangles) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Height   int
	Width    int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "piece", "description", "desc", "item"},
	"height":   {"height", "h", "depth", "d", "y"},
	"width":    {"width", "w", "length", "len", "x"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// Import picks an importer by file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	case ".yaml", ".yml":
		return ImportYAML(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
	}
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readRecords(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}

		firstCols := len(records[0])
		consistent := 0
		for _, row := range records {
			if len(row) == firstCols {
				consistent++
			}
		}

		if score := consistent*10 + firstCols; score > bestScore {
			bestScore = score
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func readRecords(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping (label, height, width, quantity) and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Height: -1, Width: -1, Quantity: -1}
	slots := map[string]*int{
		"label":    &mapping.Label,
		"height":   &mapping.Height,
		"width":    &mapping.Width,
		"quantity": &mapping.Quantity,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Height: 1, Width: 2, Quantity: 3}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func sizeOf(height, width float64) model.Size {
	return model.Size{Height: height, Width: width}
}

// lineItem is one parsed row: a size wanted quantity times.
type lineItem struct {
	label    string
	size     model.Size
	quantity int
}

// parseRow extracts a line item from a row using the given column mapping.
// A missing quantity column means one piece. Returns the item, any error
// message and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) (lineItem, string, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Piece %d", itemCount+1)
	}

	height, errMsg := parseDimension(getCell(row, mapping.Height), "height", rowLabel)
	if errMsg != "" {
		return lineItem{}, errMsg, ""
	}
	width, errMsg := parseDimension(getCell(row, mapping.Width), "width", rowLabel)
	if errMsg != "" {
		return lineItem{}, errMsg, ""
	}

	qty := 1
	var warning string
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil {
			return lineItem{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
		}
		if n <= 0 {
			return lineItem{}, fmt.Sprintf("%s: Quantity must be positive", rowLabel), ""
		}
		qty = n
	} else if mapping.Quantity >= 0 {
		warning = fmt.Sprintf("%s: Missing quantity, assuming 1", rowLabel)
	}

	return lineItem{label: label, size: model.Size{Height: height, Width: width}, quantity: qty}, "", warning
}

func parseDimension(s, name, rowLabel string) (float64, string) {
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, s)
	}
	if v <= 0 {
		return 0, fmt.Sprintf("%s: %s must be positive", rowLabel, strings.ToUpper(name[:1])+name[1:])
	}
	return v, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// expand turns line items into rectangles with sequential IDs. Items wanted
// more than once get numbered labels.
func expand(items []lineItem) []model.Rectangle {
	var rects []model.Rectangle
	for _, it := range items {
		for n := 1; n <= it.quantity; n++ {
			label := it.label
			if it.quantity > 1 {
				label = fmt.Sprintf("%s #%d", it.label, n)
			}
			rects = append(rects, model.Rectangle{
				ID:     len(rects),
				Label:  label,
				Height: it.size.Height,
				Width:  it.size.Width,
			})
		}
	}
	return rects
}

// ImportCSV imports pieces from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readRecords(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports pieces from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readRecords(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports pieces from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into line items.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still has a non-numeric height column.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	var items []lineItem
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		item, errMsg, warning := parseRow(row, mapping, rowLabel, len(items))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		items = append(items, item)
	}

	result.Rectangles = expand(items)
	return result
}
