package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/piwi3910/sheetfit/internal/engine"
	"github.com/piwi3910/sheetfit/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func placementTable(placements []model.Placement) *table.Table {
	t := newTable("ID", "Label", "Size", "X", "Y", "Rotated")
	for _, p := range placements {
		t.Row(strconv.Itoa(p.RectangleID), p.Label, p.Size.String(), num(p.Position.X), num(p.Position.Y), yesNo(p.Rotated))
	}
	return t
}

// packingOutput is the JSON form of a single-sheet result.
type packingOutput struct {
	Feasible   bool              `json:"feasible"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	UsedArea   float64           `json:"used_area"`
	Efficiency float64           `json:"efficiency"`
	Placements []model.Placement `json:"placements"`
}

func writePacking(w io.Writer, width, height float64, p model.Packing, jsonOut bool) error {
	sheet := model.Sheet{Width: width, Height: height, Placements: p.Placements}
	if jsonOut {
		out := packingOutput{
			Feasible:   p.IsFeasible(),
			Width:      width,
			Height:     height,
			Placements: []model.Placement{},
		}
		if p.IsFeasible() {
			out.UsedArea = sheet.UsedArea()
			out.Efficiency = sheet.Efficiency()
			out.Placements = p.Placements
		}
		return writeJSON(w, out)
	}

	if !p.IsFeasible() {
		_, err := fmt.Fprintf(w, "No packing found on a %gx%g sheet.\n", width, height)
		return err
	}
	if _, err := fmt.Fprintf(w, "%d pieces on a %gx%g sheet, %.1f%% used\n", p.Len(), width, height, sheet.Efficiency()); err != nil {
		return err
	}
	if p.Len() == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, placementTable(p.Placements).Render())
	return err
}

// sheetsOutput is the JSON form of a multi-sheet result.
type sheetsOutput struct {
	model.MultiSheetResult
	Efficiency float64             `json:"efficiency"`
	Estimate   model.SheetEstimate `json:"estimate"`
	Offcuts    []model.Offcut      `json:"offcuts"`
}

func writeSheets(w io.Writer, result model.MultiSheetResult, est model.SheetEstimate, offcuts []model.Offcut, detail, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, sheetsOutput{
			MultiSheetResult: result,
			Efficiency:       result.TotalEfficiency(),
			Estimate:         est,
			Offcuts:          offcuts,
		})
	}

	summary := newTable("Sheet", "Pieces", "Used", "Efficiency")
	for i, s := range result.Sheets {
		summary.Row(strconv.Itoa(i+1), strconv.Itoa(len(s.Placements)), num(s.UsedArea()), fmt.Sprintf("%.1f%%", s.Efficiency()))
	}
	if _, err := fmt.Fprintln(w, summary.Render()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%d sheets (at least %d by area), %d placed, %d unplaced, %.1f%% overall\n",
		len(result.Sheets), est.SheetsNeededMin, result.PlacedCount(), len(result.Unplaced), result.TotalEfficiency()); err != nil {
		return err
	}

	if detail {
		for i, s := range result.Sheets {
			if _, err := fmt.Fprintf(w, "\nSheet %d\n%s\n", i+1, placementTable(s.Placements).Render()); err != nil {
				return err
			}
		}
	}

	if len(offcuts) > 0 {
		t := newTable("Sheet", "Size", "X", "Y")
		for _, o := range offcuts {
			t.Row(strconv.Itoa(o.Sheet+1), o.Size.String(), num(o.Position.X), num(o.Position.Y))
		}
		if _, err := fmt.Fprintf(w, "\nOffcuts (%s total)\n%s\n", num(model.TotalOffcutArea(offcuts)), t.Render()); err != nil {
			return err
		}
	}

	if len(result.Unplaced) > 0 {
		t := newTable("ID", "Label", "Size")
		for _, r := range result.Unplaced {
			t.Row(strconv.Itoa(r.ID), r.Label, r.Size().String())
		}
		if _, err := fmt.Fprintf(w, "\nUnplaced\n%s\n", t.Render()); err != nil {
			return err
		}
	}
	return nil
}

// comparisonOutput is the JSON form of one compared scenario.
type comparisonOutput struct {
	Scenario      string  `json:"scenario"`
	Sheets        int     `json:"sheets"`
	Placed        int     `json:"placed"`
	Unplaced      int     `json:"unplaced"`
	WastePercent  float64 `json:"waste_percent"`
	SolverCalls   int64   `json:"solver_calls"`
	CacheHits     int64   `json:"cache_hits"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

func writeComparison(w io.Writer, results []engine.ComparisonResult, jsonOut bool) error {
	rows := make([]comparisonOutput, len(results))
	for i, r := range results {
		rows[i] = comparisonOutput{
			Scenario:      r.Scenario.Name,
			Sheets:        r.SheetsUsed,
			Placed:        r.PlacedCount,
			Unplaced:      r.UnplacedCount,
			WastePercent:  r.WastePercent,
			SolverCalls:   r.Stats.SolverCalls,
			CacheHits:     r.Stats.CacheHits,
			ElapsedMillis: r.Elapsed.Milliseconds(),
		}
	}
	if jsonOut {
		return writeJSON(w, rows)
	}

	t := newTable("Scenario", "Sheets", "Placed", "Unplaced", "Waste", "Solver calls", "Cache hits", "Time")
	for _, r := range rows {
		t.Row(r.Scenario, strconv.Itoa(r.Sheets), strconv.Itoa(r.Placed), strconv.Itoa(r.Unplaced),
			fmt.Sprintf("%.1f%%", r.WastePercent), strconv.FormatInt(r.SolverCalls, 10),
			strconv.FormatInt(r.CacheHits, 10), fmt.Sprintf("%dms", r.ElapsedMillis))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writePresets(w io.Writer, presets []model.SheetPreset) error {
	t := newTable("Name", "Width", "Height", "Material")
	for _, p := range presets {
		t.Row(p.Name, num(p.Width), num(p.Height), p.Material)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
