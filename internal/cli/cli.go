// Package cli implements the sheetfit command-line interface.
//
// Every packing command reads a piece list (CSV, Excel, DXF, YAML job file or
// a saved JSON job), resolves the sheet size from flags, the job file or the
// config, and prints the result as a table or as JSON.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetfit/internal/model"
	"github.com/piwi3910/sheetfit/internal/project"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	verbose    bool
	timeout    time.Duration
	config     model.AppConfig
}

// New creates a CLI that writes results to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(logw, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		out:    out,
		config: model.DefaultAppConfig(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetfit",
		Short: "sheetfit packs rectangular pieces onto fixed-size sheets",
		Long: `sheetfit packs rectangular pieces onto fixed-size sheets, turning pieces by
90 degrees where that helps. It can check whether a whole list fits one sheet,
pick the best subset for one sheet, or spread the list over as many sheets as
needed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.sheetfit/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 0, "abort the search after this long (0: use config)")

	root.AddCommand(c.fitCommand())
	root.AddCommand(c.maxUseCommand())
	root.AddCommand(c.sheetsCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.configCommand())

	return root
}

// setup loads the config and applies the global flags on top of it.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.configPath == "" {
		c.configPath = project.DefaultConfigPath()
	}
	cfg, err := project.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg

	level := LogInfo
	if cfg.LogLevel != "" {
		if level, err = log.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("config log_level: %w", err)
		}
	}
	if c.verbose {
		level = LogDebug
	}
	c.Logger.SetLevel(level)

	if c.timeout == 0 {
		if c.timeout, err = cfg.TimeoutDuration(); err != nil {
			return err
		}
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "timeout", c.timeout)
	return nil
}

// searchContext bounds ctx by the configured timeout, if any.
func (c *CLI) searchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}
