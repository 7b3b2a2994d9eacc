package engine

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"github.com/piwi3910/sheetfit/internal/model"
)

// MaxUsage finds the subset of rects that places the most pieces on one
// width x height sheet, preferring larger total area among subsets of equal
// size. maxCount caps the subset size; 0 means no cap. When
// Settings.MinUsage is set, subsets covering less than that fraction of the
// sheet are not considered and model.Infeasible is returned if none qualifies.
//
// The search is greedy: the first feasible subset at the highest cardinality
// wins even if a smaller subset would cover more area.
func (e *Engine) MaxUsage(ctx context.Context, rects []model.Rectangle, width, height float64, maxCount int) (model.Packing, error) {
	if err := model.ValidateSheet(width, height); err != nil {
		return model.Infeasible, err
	}
	if err := model.ValidateRectangles(rects); err != nil {
		return model.Infeasible, err
	}
	if maxCount < 0 {
		return model.Infeasible, &model.InputError{Field: "max count", Value: float64(maxCount), Reason: "must not be negative"}
	}
	if u := e.Settings.MinUsage; u < 0 || u > 1 {
		return model.Infeasible, &model.InputError{Field: "min usage", Value: u, Reason: "must be between 0 and 1"}
	}

	packing, err := e.maxUsage(ctx, rects, width, height, maxCount, e.Settings.MinUsage)
	if err != nil {
		return model.Infeasible, fmt.Errorf("max usage: %w", err)
	}
	return packing, nil
}

// keepGroup is a footprint group of candidates with its piece area.
type keepGroup struct {
	members []model.Rectangle // area descending, input order among equals
	area    float64
}

func (e *Engine) maxUsage(ctx context.Context, rects []model.Rectangle, width, height float64, maxCount int, minUsage float64) (model.Packing, error) {
	candidates := make([]model.Rectangle, 0, len(rects))
	for _, r := range rects {
		if r.FitsSheet(width, height) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		if minUsage > 0 {
			return model.Infeasible, nil
		}
		return model.Feasible(nil), nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Area() > candidates[j].Area()
	})

	var groups []keepGroup
	index := make(map[model.Size]int)
	for _, r := range candidates {
		fp := r.Size().Footprint()
		gi, ok := index[fp]
		if !ok {
			gi = len(groups)
			index[fp] = gi
			groups = append(groups, keepGroup{area: r.Area()})
		}
		groups[gi].members = append(groups[gi].members, r)
	}

	sheetArea := width * height
	floor := candidates[0].Area()
	if t := minUsage * sheetArea; t > floor {
		floor = t
	}

	ceiling := len(candidates)
	if maxCount > 0 && maxCount < ceiling {
		ceiling = maxCount
	}

	for k := ceiling; k >= 1; k-- {
		if err := ctx.Err(); err != nil {
			return model.Infeasible, err
		}

		var (
			found   model.Packing
			tried   int
			packErr error
		)
		err := forEachKeepCount(ctx, groups, k, floor, sheetArea, func(s keepSubset) bool {
			tried++
			subset := make([]model.Rectangle, 0, k)
			for gi, n := range s.counts {
				subset = append(subset, groups[gi].members[:n]...)
			}
			packing, err := e.packAll(ctx, subset, width, height)
			if err != nil {
				packErr = err
				return false
			}
			if packing.IsFeasible() {
				e.logger.Debug("max usage found", "pieces", k, "area", s.area)
				found = packing
				return false
			}
			return true
		})
		if err == nil {
			err = packErr
		}
		if err != nil {
			return model.Infeasible, err
		}
		e.logger.Debug("max usage cardinality", "pieces", k, "subsets", tried)
		if found.IsFeasible() {
			return found, nil
		}
	}

	if minUsage > 0 {
		return model.Infeasible, nil
	}
	return model.Feasible(nil), nil
}

type keepSubset struct {
	counts []int // pieces kept per group
	area   float64
	seq    int // position in enumeration order
}

// after reports whether s comes later than o in search order: smaller area
// first, then later enumeration among equal areas.
func (s keepSubset) after(o keepSubset) bool {
	if s.area != o.area {
		return s.area < o.area
	}
	return s.seq > o.seq
}

// subsetHeap keeps the latest subset in search order on top.
type subsetHeap []keepSubset

func (h subsetHeap) Len() int           { return len(h) }
func (h subsetHeap) Less(i, j int) bool { return h[i].after(h[j]) }
func (h subsetHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *subsetHeap) Push(x any)        { *h = append(*h, x.(keepSubset)) }
func (h *subsetHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

const (
	keepBatchSize  = 1024
	keepCheckEvery = 4096
	areaSlack      = 1e-9
)

// forEachKeepCount calls fn with the per-group counts summing to k whose
// total area lies within [floor, limit], largest area first. Subsets of equal
// area keep the order of enumeration, which favours the larger pieces.
// Subsets are produced in batches so memory stays bounded; enumeration stops
// when fn returns false or ctx ends.
func forEachKeepCount(ctx context.Context, groups []keepGroup, k int, floor, limit float64, fn func(keepSubset) bool) error {
	var cursor *keepSubset
	for {
		batch, err := keepBatch(ctx, groups, k, floor, limit, cursor, keepBatchSize)
		if err != nil {
			return err
		}
		for _, s := range batch {
			if !fn(s) {
				return nil
			}
		}
		if len(batch) < keepBatchSize {
			return nil
		}
		last := batch[len(batch)-1]
		cursor = &last
	}
}

// keepBatch walks the count vectors and returns, in search order, the first
// n of them that come after cursor. Groups must be sorted by area descending.
func keepBatch(ctx context.Context, groups []keepGroup, k int, floor, limit float64, cursor *keepSubset, n int) ([]keepSubset, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	// available[i] is how many pieces groups i.. can still contribute.
	available := make([]int, len(groups)+1)
	for i := len(groups) - 1; i >= 0; i-- {
		available[i] = available[i+1] + len(groups[i].members)
	}
	smallest := groups[len(groups)-1].area

	var (
		h      subsetHeap
		seq    int
		nodes  int
		ctxErr error
	)
	counts := make([]int, len(groups))
	var walk func(gi, left int, area float64) bool
	walk = func(gi, left int, area float64) bool {
		nodes++
		if nodes%keepCheckEvery == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		if area > limit {
			return true
		}
		if left == 0 {
			if area < floor {
				return true
			}
			s := keepSubset{area: area, seq: seq}
			seq++
			if cursor != nil && !s.after(*cursor) {
				return true
			}
			if len(h) == n && s.after(h[0]) {
				return true
			}
			s.counts = append([]int(nil), counts...)
			heap.Push(&h, s)
			if len(h) > n {
				heap.Pop(&h)
			}
			return true
		}
		if gi == len(groups) || available[gi] < left {
			return true
		}
		// Bounds from the largest and smallest pieces still available.
		rest := float64(left)
		if area+rest*groups[gi].area < floor*(1-areaSlack) {
			return true
		}
		if area+rest*smallest > limit*(1+areaSlack) {
			return true
		}
		hi := min(left, len(groups[gi].members))
		for c := hi; c >= 0; c-- {
			counts[gi] = c
			if !walk(gi+1, left-c, area+float64(c)*groups[gi].area) {
				counts[gi] = 0
				return false
			}
		}
		counts[gi] = 0
		return true
	}
	walk(0, k, 0)
	if ctxErr != nil {
		return nil, ctxErr
	}

	out := make([]keepSubset, len(h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(keepSubset)
	}
	return out, nil
}
