package model

import "sort"

// Offcut is an unused rectangular strip left on a packed sheet.
type Offcut struct {
	Sheet    int   `json:"sheet"` // index of the source sheet in the result
	Position Point `json:"position"`
	Size     Size  `json:"size"`
}

// Area returns the area of the offcut.
func (o Offcut) Area() float64 {
	return o.Size.Area()
}

// DetectOffcuts returns the strips to the right of and above everything placed
// on the sheet. Strips with a side shorter than minSide are dropped. The two
// strips never overlap: the upper one stops where the right one begins.
// Results are ordered by area, largest first.
func DetectOffcuts(sheet Sheet, index int, minSide float64) []Offcut {
	if len(sheet.Placements) == 0 {
		return keepOffcuts([]Offcut{{
			Sheet: index,
			Size:  Size{Height: sheet.Height, Width: sheet.Width},
		}}, minSide)
	}

	var maxRight, maxTop float64
	for _, p := range sheet.Placements {
		maxRight = max(maxRight, p.Right())
		maxTop = max(maxTop, p.Top())
	}

	offcuts := []Offcut{
		{
			Sheet:    index,
			Position: Point{X: maxRight},
			Size:     Size{Height: sheet.Height, Width: sheet.Width - maxRight},
		},
		{
			Sheet:    index,
			Position: Point{Y: maxTop},
			Size:     Size{Height: sheet.Height - maxTop, Width: min(maxRight, sheet.Width)},
		},
	}
	offcuts = keepOffcuts(offcuts, minSide)

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

func keepOffcuts(offcuts []Offcut, minSide float64) []Offcut {
	kept := offcuts[:0]
	for _, o := range offcuts {
		if o.Size.Height > 0 && o.Size.Width > 0 && o.Size.Height >= minSide && o.Size.Width >= minSide {
			kept = append(kept, o)
		}
	}
	return kept
}

// DetectAllOffcuts finds offcuts across all sheets of a result.
func DetectAllOffcuts(result MultiSheetResult, minSide float64) []Offcut {
	all := []Offcut{}
	for i, sheet := range result.Sheets {
		all = append(all, DetectOffcuts(sheet, i, minSide)...)
	}
	return all
}

// TotalOffcutArea returns the total area of all offcuts.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
