package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// fitCommand checks whether every piece fits one sheet.
func (c *CLI) fitCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "fit <file>",
		Short: "Pack every piece onto a single sheet",
		Long: `Pack every piece onto a single sheet, turning pieces by 90 degrees where
needed. Prints the layout, or reports that no layout was found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFit(cmd.Context(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runFit(ctx context.Context, path string, flags packFlags) error {
	job, err := c.loadJob(path, flags)
	if err != nil {
		return err
	}
	eng, err := c.newEngine(c.settings(flags))
	if err != nil {
		return err
	}

	ctx, cancel := c.searchContext(ctx)
	defer cancel()

	packing, err := eng.PackAll(ctx, job.Rectangles, job.SheetWidth, job.SheetHeight)
	if err != nil {
		return err
	}
	c.logStats(eng)
	return writePacking(c.out, job.SheetWidth, job.SheetHeight, packing, flags.jsonOut)
}
