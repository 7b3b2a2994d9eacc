package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/sheetfit/internal/model"
)

func TestSaveAndLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs", "kitchen.json")

	rects := model.NewRectangles([]model.Size{{Height: 4, Width: 3}, {Height: 2, Width: 2}})
	job := model.NewJob("kitchen", 10, 5, rects)
	job.Result = &model.MultiSheetResult{
		Sheets: []model.Sheet{{
			Width: 10, Height: 5,
			Placements: []model.Placement{
				{RectangleID: 0, Label: "R1", Size: model.Size{Height: 3, Width: 4}, Rotated: true},
				{RectangleID: 1, Label: "R2", Size: model.Size{Height: 2, Width: 2}, Position: model.Point{X: 4}},
			},
		}},
		Unplaced: []model.Rectangle{},
	}

	if err := SaveJob(path, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	loaded, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}

	if loaded.ID != job.ID || loaded.Name != "kitchen" {
		t.Errorf("unexpected job header %+v", loaded)
	}
	if len(loaded.Rectangles) != 2 || loaded.Rectangles[1].Label != "R2" {
		t.Errorf("unexpected rectangles %+v", loaded.Rectangles)
	}
	if loaded.Result == nil || loaded.Result.PlacedCount() != 2 {
		t.Fatalf("expected the result to survive, got %+v", loaded.Result)
	}
	if !loaded.Result.Sheets[0].Placements[0].Rotated {
		t.Error("rotation flag lost")
	}
}

func TestLoadJobErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage.json":    "{not json",
		"noversion.json":  `{"job": {"sheet_width": 1, "sheet_height": 1}}`,
		"badsheet.json":   `{"version": "1.0.0", "job": {"sheet_width": 0, "sheet_height": 1}}`,
		"badpieces.json":  `{"version": "1.0.0", "job": {"sheet_width": 1, "sheet_height": 1, "rectangles": [{"id": 0, "height": -1, "width": 1}]}}`,
		"duplicates.json": `{"version": "1.0.0", "job": {"sheet_width": 1, "sheet_height": 1, "rectangles": [{"id": 0, "height": 1, "width": 1}, {"id": 0, "height": 1, "width": 1}]}}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadJob(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	_, err := LoadJob(filepath.Join(dir, "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "read") {
		t.Errorf("expected a read error, got %v", err)
	}
}

func TestLoadJobWithoutRectangles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0.0", "job": {"id": "x", "sheet_width": 5, "sheet_height": 5}}`), 0644); err != nil {
		t.Fatal(err)
	}
	job, err := LoadJob(path)
	if err != nil {
		t.Fatalf("LoadJob failed: %v", err)
	}
	if job.Rectangles == nil {
		t.Error("Rectangles should never be nil")
	}
}
