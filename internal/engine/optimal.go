package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/sheetfit/internal/model"
)

// PackAll places every rectangle on one width x height sheet, turning pieces
// where that helps, or returns model.Infeasible. Placements follow the order
// of rects.
func (e *Engine) PackAll(ctx context.Context, rects []model.Rectangle, width, height float64) (model.Packing, error) {
	if err := model.ValidateSheet(width, height); err != nil {
		return model.Infeasible, err
	}
	if err := model.ValidateRectangles(rects); err != nil {
		return model.Infeasible, err
	}

	packing, err := e.packAll(ctx, rects, width, height)
	if err != nil {
		return model.Infeasible, fmt.Errorf("optimal packing: %w", err)
	}
	return packing, nil
}

// packAll is PackAll without input validation.
func (e *Engine) packAll(ctx context.Context, rects []model.Rectangle, width, height float64) (model.Packing, error) {
	if len(rects) == 0 {
		return model.Feasible(nil), nil
	}
	for _, r := range rects {
		if !r.FitsSheet(width, height) {
			return model.Infeasible, nil
		}
	}
	if model.TotalArea(rects) > width*height {
		return model.Infeasible, nil
	}

	groups := groupByFootprint(rects)
	var (
		found    []model.Size
		points   []model.Point
		probeErr error
		tried    int
	)
	orientationCombos(rects, groups, width, height, func(sizes []model.Size) bool {
		tried++
		pts, ok, err := e.prober.Probe(ctx, sizes, width, height)
		if err != nil {
			probeErr = err
			return false
		}
		if ok {
			found = append([]model.Size(nil), sizes...)
			points = pts
			return false
		}
		return true
	})
	if probeErr != nil {
		return model.Infeasible, probeErr
	}

	e.logger.Debug("orientation search", "pieces", len(rects), "groups", len(groups), "orientations", orientationCount(rects), "probed", tried, "feasible", found != nil)
	if found == nil {
		return model.Infeasible, nil
	}

	placements := make([]model.Placement, len(rects))
	for i, r := range rects {
		placements[i] = model.Placement{
			RectangleID: r.ID,
			Label:       r.Label,
			Size:        found[i],
			Position:    points[i],
			Rotated:     found[i] != r.Size(),
		}
	}
	return model.Feasible(placements), nil
}
