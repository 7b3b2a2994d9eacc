package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[rune]string{
		',':  "Label,Height,Width,Qty\nShelf,300,600,2\nDoor,800,400,1\n",
		';':  "Label;Height;Width;Qty\nShelf;300;600;2\nDoor;800;400;1\n",
		'\t': "Label\tHeight\tWidth\tQty\nShelf\t300\t600\t2\nDoor\t800\t400\t1\n",
		'|':  "Label|Height|Width|Qty\nShelf|300|600|2\nDoor|800|400|1\n",
	}
	for want, data := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "Height", "Width", "Quantity"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Height: 1, Width: 2, Quantity: 3}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"QTY", "W", "H", "Name"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 3, Height: 2, Width: 1, Quantity: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Shelf", "300", "600", "2"})
	if isHeader {
		t.Error("numeric row must not be taken as a header")
	}
	want := ColumnMapping{Label: 0, Height: 1, Width: 2, Quantity: 3}
	if mapping != want {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Height,Width,Qty\nShelf,300,600,2\nDoor,800,400,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(result.Rectangles))
	}

	first := result.Rectangles[0]
	if first.Label != "Shelf #1" || first.Height != 300 || first.Width != 600 {
		t.Errorf("unexpected first rectangle %+v", first)
	}
	if result.Rectangles[1].Label != "Shelf #2" {
		t.Errorf("expected numbered label, got %q", result.Rectangles[1].Label)
	}
	if result.Rectangles[2].Label != "Door" {
		t.Errorf("single pieces keep their label, got %q", result.Rectangles[2].Label)
	}
	for i, r := range result.Rectangles {
		if r.ID != i {
			t.Errorf("expected ID %d, got %d", i, r.ID)
		}
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Shelf,300,600,1\nDoor,800,400,1\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 2 {
		t.Fatalf("expected 2 rectangles, got %d", len(result.Rectangles))
	}
}

func TestImportCSVFromReader_QuantityOptional(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("name,h,w\nA,1,2\nB,3,4\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 2 {
		t.Fatalf("expected one rectangle per row, got %d", len(result.Rectangles))
	}
}

func TestImportCSVFromReader_RowErrorsDoNotAbort(t *testing.T) {
	data := "Label,Height,Width,Qty\nGood,1,2,1\nBad,abc,2,1\nNeg,-1,2,1\nZeroQty,1,1,0\nMissing,,2,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rectangles) != 1 {
		t.Errorf("expected 1 valid rectangle, got %d", len(result.Rectangles))
	}
	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Height,Qty\nA,1,1\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Width") {
		t.Errorf("expected a missing Width column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabel(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Height,Width,Qty\n,1,2,1\n"), ',')
	if len(result.Rectangles) != 1 || result.Rectangles[0].Label != "Piece 1" {
		t.Errorf("expected generated label, got %+v", result.Rectangles)
	}
}

func TestImportCSVFromReader_EmptyRowsAndDecimals(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("A, 1.5 , 2.25 ,1\n\n,,,\nB,3,4,1\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 2 {
		t.Fatalf("expected 2 rectangles, got %d", len(result.Rectangles))
	}
	if result.Rectangles[0].Height != 1.5 || result.Rectangles[0].Width != 2.25 {
		t.Errorf("unexpected size %+v", result.Rectangles[0])
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pieces.csv")
	if err := os.WriteFile(path, []byte("Label;Height;Width;Qty\nA;10;20;3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := Import(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 3 {
		t.Errorf("expected 3 rectangles, got %d", len(result.Rectangles))
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_EmptyAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
	if result := ImportCSV(filepath.Join(t.TempDir(), "nope.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImport_UnsupportedExtension(t *testing.T) {
	result := Import("pieces.pdf")
	if result.OK() || len(result.Errors) != 1 {
		t.Errorf("expected one error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pieces.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Width", "Height", "Label", "Qty"},
		{600, 300, "Shelf", 2},
		{400, 800, "Door", 1},
	})

	result := Import(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rectangles) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(result.Rectangles))
	}
	if r := result.Rectangles[2]; r.Label != "Door" || r.Height != 800 || r.Width != 400 {
		t.Errorf("unexpected rectangle %+v", r)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── YAML Import Tests ─────────────────────────────────────

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: kitchen
sheet: {width: 2440, height: 1220}
pieces:
  - {label: door, height: 700, width: 400, quantity: 2}
  - {height: 300, width: 300}
`)
	result := ParseYAML(data)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Name != "kitchen" || result.SheetWidth != 2440 || result.SheetHeight != 1220 {
		t.Errorf("unexpected job header %+v", result)
	}
	if len(result.Rectangles) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(result.Rectangles))
	}
	if result.Rectangles[2].Label != "Piece 2" {
		t.Errorf("expected generated label, got %q", result.Rectangles[2].Label)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	if result := ParseYAML([]byte("pieces: [")); len(result.Errors) == 0 {
		t.Error("expected parse error")
	}
	if result := ParseYAML([]byte("name: x\n")); len(result.Errors) == 0 {
		t.Error("expected error for a job without pieces")
	}
	result := ParseYAML([]byte("sheet: {width: -1, height: 5}\npieces:\n  - {height: 0, width: 2}\n  - {height: 1, width: 2}\n"))
	if len(result.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", result.Errors)
	}
	if len(result.Rectangles) != 1 {
		t.Errorf("expected the valid piece to survive, got %d", len(result.Rectangles))
	}
}

func TestImportYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte("pieces:\n  - {height: 1, width: 2, quantity: 4}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := Import(path); !result.OK() || len(result.Rectangles) != 4 {
		t.Errorf("expected 4 rectangles, got %+v", result)
	}
}

// ─── DXF Geometry Tests ────────────────────────────────────

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPolylineBounds_Straight(t *testing.T) {
	b := polylineBounds([][]float64{{10, 5}, {40, 5}, {40, 25}, {10, 25}}, nil)
	if !approx(b.width(), 30) || !approx(b.height(), 20) {
		t.Errorf("expected 30x20, got %gx%g", b.width(), b.height())
	}
}

func TestPolylineBounds_BulgedEdge(t *testing.T) {
	// A 20x10 rectangle whose bottom edge is a half circle bulging outwards.
	vertices := [][]float64{{0, 0}, {20, 0}, {20, 10}, {0, 10}}
	bulges := []float64{1, 0, 0, 0}
	b := polylineBounds(vertices, bulges)
	if !approx(b.width(), 20) {
		t.Errorf("expected width 20, got %g", b.width())
	}
	if !approx(b.minY, -10) || !approx(b.height(), 20) {
		t.Errorf("expected the arc to reach y=-10, got minY %g height %g", b.minY, b.height())
	}
}

func TestBulgePointsEndpoints(t *testing.T) {
	for _, bulge := range []float64{0.5, -0.5, 1, -2} {
		pts := bulgePoints(point{0, 0}, point{4, 0}, bulge, 16)
		first, last := pts[0], pts[len(pts)-1]
		if !approx(first.x, 0) || !approx(first.y, 0) || !approx(last.x, 4) || !approx(last.y, 0) {
			t.Errorf("bulge %g: arc must run from p1 to p2, got %v .. %v", bulge, first, last)
		}
	}
}

func TestChainLoops(t *testing.T) {
	segs := []segment{
		{start: point{0, 0}, end: point{5, 0}},
		{start: point{0, 3}, end: point{0, 0}},
		{start: point{5, 3}, end: point{5, 0}}, // reversed
		{start: point{5, 3}, end: point{0, 3}},
		// a dangling line
		{start: point{10, 10}, end: point{12, 10}},
	}
	loops, open := chainLoops(segs)
	if len(loops) != 1 {
		t.Fatalf("expected 1 loop, got %d", len(loops))
	}
	if open != 1 {
		t.Errorf("expected 1 open chain, got %d", open)
	}
	if !approx(loops[0].width(), 5) || !approx(loops[0].height(), 3) {
		t.Errorf("expected 5x3, got %gx%g", loops[0].width(), loops[0].height())
	}
}

func TestArcPointsFullCircleCloses(t *testing.T) {
	pts := arcPoints(0, 0, 2, 0, 360, 32)
	loops, open := chainLoops([]segment{{start: pts[0], end: pts[len(pts)-1], via: pts[1 : len(pts)-1]}})
	if len(loops) != 1 || open != 0 {
		t.Fatalf("expected one closed loop, got %d loops %d open", len(loops), open)
	}
	if !approx(loops[0].width(), 4) || !approx(loops[0].height(), 4) {
		t.Errorf("expected 4x4, got %gx%g", loops[0].width(), loops[0].height())
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	if result := ImportDXF(filepath.Join(t.TempDir(), "missing.dxf")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
