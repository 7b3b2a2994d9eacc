package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetfit/internal/engine"
	"github.com/piwi3910/sheetfit/internal/importer"
	"github.com/piwi3910/sheetfit/internal/model"
	"github.com/piwi3910/sheetfit/internal/project"
)

// packFlags are shared by every packing command.
type packFlags struct {
	sheet      string
	width      float64
	height     float64
	heuristics []string
	jsonOut    bool
}

func (f *packFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "named sheet preset (see 'sheetfit presets')")
	cmd.Flags().Float64Var(&f.width, "width", 0, "sheet width (default: job file, then config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "sheet height (default: job file, then config)")
	cmd.Flags().StringSliceVar(&f.heuristics, "heuristics", nil, "solver heuristics to try: bssf, bl, baf, cp, blsf")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the result as JSON")
}

// loadJob reads the pieces in path and resolves the sheet size.
func (c *CLI) loadJob(path string, flags packFlags) (model.Job, error) {
	var job model.Job
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var err error
		if job, err = project.LoadJob(path); err != nil {
			return model.Job{}, err
		}
	} else {
		res := importer.Import(path)
		for _, w := range res.Warnings {
			c.Logger.Warn(w, "file", path)
		}
		if len(res.Errors) > 0 {
			return model.Job{}, fmt.Errorf("import %s: %s", path, strings.Join(res.Errors, "; "))
		}
		name := res.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		job = model.NewJob(name, res.SheetWidth, res.SheetHeight, res.Rectangles)
	}

	width, height := flags.width, flags.height
	if flags.sheet != "" {
		preset, ok := model.FindPreset(c.config.Presets, flags.sheet)
		if !ok {
			return model.Job{}, fmt.Errorf("unknown sheet preset %q (available: %s)",
				flags.sheet, strings.Join(model.PresetNames(c.config.Presets), ", "))
		}
		if width == 0 {
			width = preset.Width
		}
		if height == 0 {
			height = preset.Height
		}
	}
	job.SheetWidth = sheetSide(width, job.SheetWidth, c.config.SheetWidth)
	job.SheetHeight = sheetSide(height, job.SheetHeight, c.config.SheetHeight)
	if err := model.ValidateSheet(job.SheetWidth, job.SheetHeight); err != nil {
		return model.Job{}, err
	}

	c.Logger.Debug("job loaded", "name", job.Name, "pieces", len(job.Rectangles),
		"sheet", fmt.Sprintf("%gx%g", job.SheetWidth, job.SheetHeight))
	return job, nil
}

// sheetSide prefers an explicitly set flag or preset, then the job's own
// size, then the config.
func sheetSide(flag, job, config float64) float64 {
	switch {
	case flag != 0:
		return flag
	case job > 0:
		return job
	default:
		return config
	}
}

// settings returns the configured pack settings with the flag overrides applied.
func (c *CLI) settings(flags packFlags) model.PackSettings {
	s := c.config.Pack
	if len(flags.heuristics) > 0 {
		s.Heuristics = flags.heuristics
	}
	return s
}

func (c *CLI) newEngine(settings model.PackSettings) (*engine.Engine, error) {
	eng, err := engine.New(settings, engine.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("initialize engine: %w", err)
	}
	return eng, nil
}

func (c *CLI) logStats(eng *engine.Engine) {
	st := eng.Stats()
	c.Logger.Debug("search finished", "probes", st.Probes, "solver_calls", st.SolverCalls,
		"cache_hits", st.CacheHits, "rejected", st.Rejected)
}
