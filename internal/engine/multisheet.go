package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/sheetfit/internal/model"
)

// PackSheets fills width x height sheets one at a time with the max-usage
// subset of the pieces still remaining. It stops when nothing remains, when
// no remaining piece can be placed, or when Settings.MaxSheets is reached.
// Every rectangle ends up on exactly one sheet or in Unplaced.
//
// On a context error the sheets completed so far are returned with the error.
func (e *Engine) PackSheets(ctx context.Context, rects []model.Rectangle, width, height float64) (model.MultiSheetResult, error) {
	result := model.MultiSheetResult{Sheets: []model.Sheet{}, Unplaced: []model.Rectangle{}}
	if err := model.ValidateSheet(width, height); err != nil {
		return result, err
	}
	if err := model.ValidateRectangles(rects); err != nil {
		return result, err
	}

	remaining := make([]model.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.FitsSheet(width, height) {
			remaining = append(remaining, r)
		} else {
			e.logger.Warn("piece fits no orientation", "id", r.ID, "label", r.Label, "size", r.Size())
			result.Unplaced = append(result.Unplaced, r)
		}
	}

	for len(remaining) > 0 {
		if e.Settings.MaxSheets > 0 && len(result.Sheets) >= e.Settings.MaxSheets {
			e.logger.Warn("sheet limit reached", "sheets", len(result.Sheets), "remaining", len(remaining))
			break
		}

		packing, err := e.maxUsage(ctx, remaining, width, height, 0, 0)
		if err != nil {
			result.Unplaced = append(result.Unplaced, remaining...)
			return result, fmt.Errorf("sheet %d: %w", len(result.Sheets)+1, err)
		}
		if packing.Len() == 0 {
			break
		}

		sheet := model.Sheet{Width: width, Height: height, Placements: packing.Placements}
		result.Sheets = append(result.Sheets, sheet)
		remaining = withoutPlaced(remaining, packing.Placements)

		e.logger.Info("sheet packed",
			"sheet", len(result.Sheets),
			"pieces", len(sheet.Placements),
			"efficiency", fmt.Sprintf("%.1f%%", sheet.Efficiency()),
			"remaining", len(remaining))
	}

	result.Unplaced = append(result.Unplaced, remaining...)
	return result, nil
}

// withoutPlaced returns a new slice holding the rectangles of remaining whose
// IDs do not appear in placements.
func withoutPlaced(remaining []model.Rectangle, placements []model.Placement) []model.Rectangle {
	placed := make(map[int]bool, len(placements))
	for _, p := range placements {
		placed[p.RectangleID] = true
	}
	next := make([]model.Rectangle, 0, len(remaining)-len(placements))
	for _, r := range remaining {
		if !placed[r.ID] {
			next = append(next, r)
		}
	}
	return next
}
