// Package engine searches for rectangle packings on fixed-size sheets.
//
// Three searches build on one another: the optimal packing decides whether a
// whole set fits one sheet when each piece may be turned by 90 degrees, the
// max-usage search picks the subset that fits best, and the multi-sheet packer
// repeats that search until every piece is placed or nothing more fits.
package engine

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/sheetfit/internal/geom"
	"github.com/piwi3910/sheetfit/internal/model"
)

// Engine runs packing searches with a fixed solver and settings.
// An Engine is safe for concurrent use.
type Engine struct {
	Settings model.PackSettings

	prober *Prober
	logger *log.Logger
}

// Option customizes an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	solver geom.Solver
	logger *log.Logger
}

// WithSolver replaces the MaxRects solver built from the settings.
func WithSolver(s geom.Solver) Option {
	return func(o *engineOptions) { o.solver = s }
}

// WithLogger sets the logger used for search progress.
func WithLogger(l *log.Logger) Option {
	return func(o *engineOptions) { o.logger = l }
}

// New returns an engine for the given settings. It fails only when the
// settings name an unknown heuristic.
func New(settings model.PackSettings, opts ...Option) (*Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.solver == nil {
		solver, err := newSolver(settings)
		if err != nil {
			return nil, err
		}
		o.solver = solver
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	return &Engine{
		Settings: settings,
		prober:   NewProber(o.solver, settings.ProbeCacheSize),
		logger:   o.logger,
	}, nil
}

// newSolver builds the MaxRects solver for the configured heuristics, chained
// to the genetic search when enabled.
func newSolver(settings model.PackSettings) (geom.Solver, error) {
	heuristics, err := geom.ParseHeuristics(settings.Heuristics)
	if err != nil {
		return nil, err
	}
	maxRects := geom.NewMaxRectsSolver(heuristics...)
	if !settings.Genetic {
		return maxRects, nil
	}

	cfg := geom.DefaultGeneticConfig()
	cfg.Seed = settings.Seed
	placement := geom.BestShortSideFit
	if len(heuristics) > 0 {
		placement = heuristics[0]
	}
	return geom.Chain{maxRects, geom.NewGeneticSolver(cfg, placement)}, nil
}

// Stats returns the probe counters accumulated by this engine.
func (e *Engine) Stats() ProbeStats {
	return e.prober.Stats()
}

// FindOptimalPacking decides whether all sizes fit one width x height sheet,
// turning pieces where needed. Sizes become rectangles with IDs 0..n-1.
func (e *Engine) FindOptimalPacking(ctx context.Context, sizes []model.Size, width, height float64) (model.Packing, error) {
	return e.PackAll(ctx, model.NewRectangles(sizes), width, height)
}

// FindMaxUsage returns the packing of the subset of sizes that places the most
// pieces, then covers the most area, on one sheet. maxCount caps the subset
// size; 0 means no cap.
func (e *Engine) FindMaxUsage(ctx context.Context, sizes []model.Size, width, height float64, maxCount int) (model.Packing, error) {
	return e.MaxUsage(ctx, model.NewRectangles(sizes), width, height, maxCount)
}

// MultiSheetPacking distributes sizes over as many sheets as needed.
func (e *Engine) MultiSheetPacking(ctx context.Context, sizes []model.Size, width, height float64) (model.MultiSheetResult, error) {
	return e.PackSheets(ctx, model.NewRectangles(sizes), width, height)
}
