package export

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/sheetfit/internal/model"
)

// buildTestResult creates a two-sheet result with one unplaced piece.
func buildTestResult() model.MultiSheetResult {
	return model.MultiSheetResult{
		Sheets: []model.Sheet{
			{
				Width: 2440, Height: 1220,
				Placements: []model.Placement{
					{RectangleID: 0, Label: "Side Panel", Size: model.Size{Height: 400, Width: 600}, Position: model.Point{X: 0, Y: 0}},
					{RectangleID: 1, Label: "Top", Size: model.Size{Height: 300, Width: 500}, Position: model.Point{X: 600, Y: 0}},
					{RectangleID: 2, Label: "Shelf", Size: model.Size{Height: 400, Width: 300}, Position: model.Point{X: 0, Y: 400}, Rotated: true},
				},
			},
			{
				Width: 2440, Height: 1220,
				Placements: []model.Placement{
					{RectangleID: 3, Label: "Back Panel", Size: model.Size{Height: 500, Width: 800}},
				},
			},
		},
		Unplaced: []model.Rectangle{{ID: 4, Label: "Too Big", Height: 3000, Width: 2000}},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")

	if err := ExportPDF(path, "Kitchen", buildTestResult()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Three pages (2 sheets + summary) should be a reasonable size
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, "Empty", model.MultiSheetResult{}); err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestExportPDF_ManySheets(t *testing.T) {
	result := model.MultiSheetResult{}
	for i := 0; i < 40; i++ {
		result.Sheets = append(result.Sheets, model.Sheet{
			Width: 10, Height: 10,
			Placements: []model.Placement{{RectangleID: i, Label: "Tile", Size: model.Size{Height: 10, Width: 10}}},
		})
	}
	path := filepath.Join(t.TempDir(), "many.pdf")
	if err := ExportPDF(path, "Tiles", result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestPageRectFlipsYAxis(t *testing.T) {
	p := model.Placement{Size: model.Size{Height: 2, Width: 3}, Position: model.Point{X: 1, Y: 0}}
	x, y, w, h := pageRect(p, 10, 5, 20, 100)

	if x != 15 || w != 30 || h != 20 {
		t.Errorf("unexpected x/w/h: %g %g %g", x, w, h)
	}
	// Resting on the sheet's bottom edge means touching the canvas bottom.
	if y+h != 120 {
		t.Errorf("expected bottom edge at 120, got %g", y+h)
	}
}

func TestSheetScaleFitsDrawingArea(t *testing.T) {
	scale := sheetScale(model.Sheet{Width: 2440, Height: 1220})
	if w := 2440 * scale; w > pageWidth-marginLeft-marginRight+1e-9 {
		t.Errorf("scaled width %g exceeds the page", w)
	}
	if math.IsInf(scale, 0) || scale <= 0 {
		t.Errorf("unexpected scale %g", scale)
	}
}
