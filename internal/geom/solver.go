// Package geom answers the purely geometric question behind every packing
// search: can this fixed list of already-oriented sizes be laid out without
// overlap inside a width x height box, and where does each one go.
package geom

import (
	"errors"

	"github.com/piwi3910/sheetfit/internal/model"
)

// ErrPackingImpossible is returned when the solver finds no layout for the sizes.
var ErrPackingImpossible = errors.New("packing impossible")

// Solver places fixed-orientation sizes inside a box. On success the returned
// points are the lower-left corners, index-aligned with sizes. Implementations
// must not keep state between calls.
type Solver interface {
	Pack(sizes []model.Size, width, height float64) ([]model.Point, error)
}

// MaxRectsSolver tries every combination of sort order and bin-selection
// heuristic with a MaxRects packer and returns the first complete layout.
// Sizes are never rotated by the solver.
type MaxRectsSolver struct {
	Heuristics []Heuristic
	Orders     []SortOrder
}

// NewMaxRectsSolver returns a solver using the given heuristics, or all of
// them when none are given, across every sort order.
func NewMaxRectsSolver(heuristics ...Heuristic) *MaxRectsSolver {
	if len(heuristics) == 0 {
		heuristics = AllHeuristics
	}
	return &MaxRectsSolver{
		Heuristics: heuristics,
		Orders:     AllSortOrders,
	}
}

// Pack implements Solver.
func (s *MaxRectsSolver) Pack(sizes []model.Size, width, height float64) ([]model.Point, error) {
	if len(sizes) == 0 {
		return []model.Point{}, nil
	}
	if !mayFit(sizes, width, height) {
		return nil, ErrPackingImpossible
	}

	heuristics := s.Heuristics
	if len(heuristics) == 0 {
		heuristics = AllHeuristics
	}
	orders := s.Orders
	if len(orders) == 0 {
		orders = AllSortOrders
	}

	for _, order := range orders {
		for _, h := range heuristics {
			var points []model.Point
			var ok bool
			if order == SortGlobal {
				points, ok = packGlobal(sizes, width, height, h)
			} else {
				points, ok = packOrdered(sizes, orderIndices(sizes, order), width, height, h)
			}
			if ok {
				return points, nil
			}
		}
	}
	return nil, ErrPackingImpossible
}

// mayFit rejects inputs no layout can satisfy: a size larger than the box or
// more total area than the box holds.
func mayFit(sizes []model.Size, width, height float64) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	var area float64
	for _, sz := range sizes {
		if sz.Width > width+eps || sz.Height > height+eps {
			return false
		}
		area += sz.Area()
	}
	return area <= width*height*(1+eps)
}

// Chain tries each solver in turn and returns the first layout found. Errors
// other than ErrPackingImpossible stop the chain.
type Chain []Solver

// Pack implements Solver.
func (c Chain) Pack(sizes []model.Size, width, height float64) ([]model.Point, error) {
	for _, s := range c {
		points, err := s.Pack(sizes, width, height)
		if err == nil {
			return points, nil
		}
		if !errors.Is(err, ErrPackingImpossible) {
			return nil, err
		}
	}
	return nil, ErrPackingImpossible
}

// packOrdered inserts sizes one by one in the given index order.
func packOrdered(sizes []model.Size, order []int, width, height float64, h Heuristic) ([]model.Point, bool) {
	packer := newMaxRectsPacker(width, height, h)
	points := make([]model.Point, len(sizes))
	for _, i := range order {
		x, y, ok := packer.insert(sizes[i].Width, sizes[i].Height)
		if !ok {
			return nil, false
		}
		points[i] = model.Point{X: x, Y: y}
	}
	return points, true
}

// packGlobal repeatedly places whichever remaining size scores best against
// the current free list.
func packGlobal(sizes []model.Size, width, height float64, h Heuristic) ([]model.Point, bool) {
	packer := newMaxRectsPacker(width, height, h)
	points := make([]model.Point, len(sizes))

	remaining := make([]int, len(sizes))
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		bestPos := -1
		var bestNode rect
		var best1, best2 float64

		for pos, i := range remaining {
			node, s1, s2, ok := packer.find(sizes[i].Width, sizes[i].Height)
			if !ok {
				continue
			}
			if bestPos < 0 || s1 < best1 || (s1 == best1 && s2 < best2) {
				bestPos, bestNode, best1, best2 = pos, node, s1, s2
			}
		}
		if bestPos < 0 {
			return nil, false
		}

		packer.place(bestNode)
		points[remaining[bestPos]] = model.Point{X: bestNode.x, Y: bestNode.y}
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}
	return points, true
}
