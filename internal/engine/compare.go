package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/sheetfit/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PackSettings
}

// ComparisonResult holds the multi-sheet result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.MultiSheetResult
	SheetsUsed    int
	PlacedCount   int
	WastePercent  float64
	UnplacedCount int
	Stats         ProbeStats
	Elapsed       time.Duration
}

// CompareScenarios packs rects onto width x height sheets once per scenario
// and returns the results in scenario order. Each scenario gets its own
// engine, so probe counters and caches are not shared.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, rects []model.Rectangle, width, height float64, logger *log.Logger) ([]ComparisonResult, error) {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		eng, err := New(scenario.Settings, WithLogger(logger))
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		start := time.Now()
		result, err := eng.PackSheets(ctx, rects, width, height)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			SheetsUsed:    len(result.Sheets),
			PlacedCount:   result.PlacedCount(),
			WastePercent:  100.0 - result.TotalEfficiency(),
			UnplacedCount: len(result.Unplaced),
			Stats:         eng.Stats(),
			Elapsed:       time.Since(start),
		})
	}

	return results, nil
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying the solver heuristics and the probe cache.
func BuildDefaultScenarios(baseSettings model.PackSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// One scenario per single heuristic
	for _, name := range []string{"bssf", "bl", "baf", "cp", "blsf"} {
		if len(baseSettings.Heuristics) == 1 && strings.EqualFold(baseSettings.Heuristics[0], name) {
			continue
		}
		single := baseSettings
		single.Heuristics = []string{name}
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Heuristic %s only", strings.ToUpper(name)),
			Settings: single,
		})
	}

	if !baseSettings.Genetic {
		genetic := baseSettings
		genetic.Genetic = true
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Genetic Fallback",
			Settings: genetic,
		})
	}

	// Scenario: Without the probe cache
	if baseSettings.ProbeCacheSize > 0 {
		noCache := baseSettings
		noCache.ProbeCacheSize = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Probe Cache",
			Settings: noCache,
		})
	}

	return scenarios
}
