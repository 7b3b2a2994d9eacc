package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetfit/internal/engine"
)

// compareCommand runs the multi-sheet packer under several settings.
func (c *CLI) compareCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "compare <file>",
		Short: "Compare multi-sheet results across solver settings",
		Long: `Run the multi-sheet packer once with the current settings, once per single
solver heuristic and once without the probe cache, and print the results side
by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runCompare(ctx context.Context, path string, flags packFlags) error {
	job, err := c.loadJob(path, flags)
	if err != nil {
		return err
	}

	ctx, cancel := c.searchContext(ctx)
	defer cancel()

	scenarios := engine.BuildDefaultScenarios(c.settings(flags))
	results, err := engine.CompareScenarios(ctx, scenarios, job.Rectangles, job.SheetWidth, job.SheetHeight, c.Logger)
	if err != nil {
		return err
	}
	return writeComparison(c.out, results, flags.jsonOut)
}
