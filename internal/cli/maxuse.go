package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetfit/internal/model"
)

// maxUseCommand picks the subset of pieces that makes the best use of one sheet.
func (c *CLI) maxUseCommand() *cobra.Command {
	var (
		flags    packFlags
		maxCount int
		minUsage float64
	)

	cmd := &cobra.Command{
		Use:   "maxuse <file>",
		Short: "Pack the best subset of pieces onto a single sheet",
		Long: `Pack the subset of pieces that places the most pieces on a single sheet,
preferring the larger covered area among subsets of the same size.

--max-count caps the number of pieces considered for the sheet. --min-usage
rejects any subset covering less than that fraction of the sheet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := c.settings(flags)
			if cmd.Flags().Changed("min-usage") {
				settings.MinUsage = minUsage
			}
			return c.runMaxUse(cmd.Context(), args[0], flags, settings, maxCount)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&maxCount, "max-count", 0, "largest number of pieces to place (0: no cap)")
	cmd.Flags().Float64Var(&minUsage, "min-usage", 0, "smallest acceptable fraction of the sheet area (default: config)")
	return cmd
}

func (c *CLI) runMaxUse(ctx context.Context, path string, flags packFlags, settings model.PackSettings, maxCount int) error {
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

	packing, err := eng.MaxUsage(ctx, job.Rectangles, job.SheetWidth, job.SheetHeight, maxCount)
	if err != nil {
		return err
	}
	c.logStats(eng)
	return writePacking(c.out, job.SheetWidth, job.SheetHeight, packing, flags.jsonOut)
}
