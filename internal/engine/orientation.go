package engine

import (
	"math"

	"github.com/piwi3910/sheetfit/internal/model"
)

// footprintGroup collects the rectangles sharing one orientation-independent
// footprint. Within a group only the count of pieces lying flat matters, so a
// group of c non-square pieces has c+1 distinct orientation options instead
// of 2^c.
type footprintGroup struct {
	flat    model.Size // short side as height, long side as width
	members []int      // indices into the rectangle list, flat-given pieces first
	given   int        // members supplied in the flat orientation
}

func (g footprintGroup) square() bool {
	return g.flat.IsSquare()
}

// groupByFootprint groups rects in order of first appearance.
func groupByFootprint(rects []model.Rectangle) []footprintGroup {
	var groups []footprintGroup
	index := make(map[model.Size]int)

	for i, r := range rects {
		fp := r.Size().Footprint()
		gi, ok := index[fp]
		if !ok {
			gi = len(groups)
			index[fp] = gi
			groups = append(groups, footprintGroup{flat: fp})
		}
		groups[gi].members = append(groups[gi].members, i)
	}

	for gi := range groups {
		g := &groups[gi]
		ordered := make([]int, 0, len(g.members))
		for _, i := range g.members {
			if rects[i].Size() == g.flat {
				ordered = append(ordered, i)
			}
		}
		g.given = len(ordered)
		for _, i := range g.members {
			if rects[i].Size() != g.flat {
				ordered = append(ordered, i)
			}
		}
		g.members = ordered
	}
	return groups
}

// options returns the flat counts worth trying for the group on a
// width x height sheet, starting from the orientation the pieces were given
// in and moving outwards. A square group has the single option 0.
func (g footprintGroup) options(width, height float64) []int {
	if g.square() {
		return []int{0}
	}
	n := len(g.members)
	flatFits := g.flat.FitsIn(width, height)
	tallFits := g.flat.Rotated().FitsIn(width, height)
	switch {
	case !flatFits && !tallFits:
		return nil
	case !flatFits:
		return []int{0}
	case !tallFits:
		return []int{n}
	}

	opts := make([]int, 0, n+1)
	opts = append(opts, g.given)
	for d := 1; len(opts) <= n; d++ {
		if g.given-d >= 0 {
			opts = append(opts, g.given-d)
		}
		if g.given+d <= n {
			opts = append(opts, g.given+d)
		}
	}
	return opts
}

// assign writes the sizes for flat count j into sizes: the first j members
// lie flat, the rest stand tall.
func (g footprintGroup) assign(j int, sizes []model.Size) {
	for k, i := range g.members {
		if g.square() || k < j {
			sizes[i] = g.flat
		} else {
			sizes[i] = g.flat.Rotated()
		}
	}
}

// orientationCombos enumerates one orientation assignment per group as an
// odometer over the group options. fn receives a sizes slice index-aligned
// with rects; the slice is reused between calls. Enumeration stops when fn
// returns false. It returns false when some group has no usable option.
func orientationCombos(rects []model.Rectangle, groups []footprintGroup, width, height float64, fn func(sizes []model.Size) bool) bool {
	opts := make([][]int, len(groups))
	for gi, g := range groups {
		opts[gi] = g.options(width, height)
		if len(opts[gi]) == 0 {
			return false
		}
	}

	sizes := make([]model.Size, len(rects))
	counter := make([]int, len(groups))
	for {
		for gi, g := range groups {
			g.assign(opts[gi][counter[gi]], sizes)
		}
		if !fn(sizes) {
			return true
		}

		gi := len(groups) - 1
		for ; gi >= 0; gi-- {
			counter[gi]++
			if counter[gi] < len(opts[gi]) {
				break
			}
			counter[gi] = 0
		}
		if gi < 0 {
			return true
		}
	}
}

// expandOrientations lists every distinct orientation assignment of rects as
// index-aligned size lists. Identical pieces are interchangeable, so only the
// number of pieces turned within each footprint group varies.
func expandOrientations(rects []model.Rectangle) [][]model.Size {
	groups := groupByFootprint(rects)
	var out [][]model.Size
	orientationCombos(rects, groups, math.Inf(1), math.Inf(1), func(sizes []model.Size) bool {
		out = append(out, append([]model.Size(nil), sizes...))
		return true
	})
	return out
}

// orientationCount returns how many assignments expandOrientations produces.
func orientationCount(rects []model.Rectangle) int {
	total := 1
	for _, g := range groupByFootprint(rects) {
		if !g.square() {
			total *= len(g.members) + 1
		}
	}
	return total
}
