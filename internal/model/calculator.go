package model

import "math"

// SheetEstimate holds an area-based lower bound on the sheets a piece list needs.
type SheetEstimate struct {
	TotalPieceArea    float64 `json:"total_piece_area"`    // Sum of all rectangle areas
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Ceiling of exact; no layout can do better
	UnfitCount        int     `json:"unfit_count"`         // Rectangles that fit no orientation
}

// EstimateSheets computes the area lower bound for packing rects onto
// width x height sheets. Rectangles that cannot fit in any orientation are
// counted separately and left out of the area sum.
func EstimateSheets(rects []Rectangle, width, height float64) SheetEstimate {
	var est SheetEstimate
	for _, r := range rects {
		if !r.FitsSheet(width, height) {
			est.UnfitCount++
			continue
		}
		est.TotalPieceArea += r.Area()
	}

	est.SheetArea = width * height
	if est.SheetArea <= 0 {
		return est
	}

	est.SheetsNeededExact = est.TotalPieceArea / est.SheetArea
	est.SheetsNeededMin = int(math.Ceil(est.SheetsNeededExact))
	return est
}
