package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetfit/internal/export"
	"github.com/piwi3910/sheetfit/internal/model"
	"github.com/piwi3910/sheetfit/internal/project"
)

type sheetsOptions struct {
	maxSheets int
	minOffcut float64
	detail    bool
	pdfPath   string
	labelPath string
	savePath  string
}

// sheetsCommand spreads all pieces over as many sheets as needed.
func (c *CLI) sheetsCommand() *cobra.Command {
	var (
		flags packFlags
		opts  sheetsOptions
	)

	cmd := &cobra.Command{
		Use:   "sheets <file>",
		Short: "Pack all pieces onto as many sheets as needed",
		Long: `Pack all pieces onto as many sheets as needed. Each sheet takes the best
subset of the pieces still left. Pieces larger than the sheet in both
orientations are reported as unplaced.

The result can be written as a PDF layout (--pdf), as printable QR labels
(--labels) and as a job file that the other commands accept (--save).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := c.settings(flags)
			if cmd.Flags().Changed("max-sheets") {
				settings.MaxSheets = opts.maxSheets
			}
			return c.runSheets(cmd.Context(), args[0], flags, settings, opts)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&opts.maxSheets, "max-sheets", 0, "stop after this many sheets (0: no limit, default: config)")
	cmd.Flags().Float64Var(&opts.minOffcut, "min-offcut", 0, "list leftover strips with both sides at least this long")
	cmd.Flags().BoolVar(&opts.detail, "detail", false, "print the placements of every sheet")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "write the sheet layouts to this PDF file")
	cmd.Flags().StringVar(&opts.labelPath, "labels", "", "write QR piece labels to this PDF file")
	cmd.Flags().StringVar(&opts.savePath, "save", "", "save the job and its result to this JSON file")
	return cmd
}

func (c *CLI) runSheets(ctx context.Context, path string, flags packFlags, settings model.PackSettings, opts sheetsOptions) error {
	job, err := c.loadJob(path, flags)
	if err != nil {
		return err
	}
	eng, err := c.newEngine(settings)
	if err != nil {
		return err
	}

	ctx, cancel := c.searchContext(ctx)
	defer cancel()

	result, packErr := eng.PackSheets(ctx, job.Rectangles, job.SheetWidth, job.SheetHeight)
	if packErr != nil && !errors.Is(packErr, context.Canceled) && !errors.Is(packErr, context.DeadlineExceeded) {
		return packErr
	}
	c.logStats(eng)

	est := model.EstimateSheets(job.Rectangles, job.SheetWidth, job.SheetHeight)
	offcuts := model.DetectAllOffcuts(result, opts.minOffcut)
	if err := writeSheets(c.out, result, est, offcuts, opts.detail, flags.jsonOut); err != nil {
		return err
	}
	if packErr != nil {
		// Partial results are still printed, but nothing is written to disk.
		return packErr
	}

	job.Result = &result
	return c.writeArtifacts(job, opts)
}

func (c *CLI) writeArtifacts(job model.Job, opts sheetsOptions) error {
	if opts.pdfPath != "" {
		if err := export.ExportPDF(opts.pdfPath, job.Name, *job.Result); err != nil {
			return err
		}
		c.Logger.Info("layout written", "path", opts.pdfPath)
	}
	if opts.labelPath != "" {
		if err := export.ExportLabels(opts.labelPath, job.ID, *job.Result); err != nil {
			return err
		}
		c.Logger.Info("labels written", "path", opts.labelPath)
	}
	if opts.savePath != "" {
		if err := project.SaveJob(opts.savePath, job); err != nil {
			return err
		}
		c.Logger.Info("job saved", "path", opts.savePath, "id", job.ID)
		c.rememberJob(opts.savePath)
	}
	return nil
}

// rememberJob records a saved job in the config's recent list. Failures are
// logged only.
func (c *CLI) rememberJob(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.config.AddRecentJob(path)
	if err := project.SaveAppConfig(c.configPath, c.config); err != nil {
		c.Logger.Warn("could not update recent jobs", "err", err)
	}
}
