package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mdlhea/heapp/internal/projectconfig"
	"github.com/mdlhea/heapp/internal/refdata"
	"github.com/mdlhea/heapp/internal/restriction"
)

var version = "dev"

// app carries state shared by all subcommands: the persistent flags and the
// project configuration loaded before any subcommand runs.
type app struct {
	debug     bool
	dataDir   string
	configDir string
	cfg       *projectconfig.ProjectConfig
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: projectconfig.New()}
	cmd := &cobra.Command{
		Use:   "heapp",
		Short: "heapp - phase prediction for high-entropy alloys",
		Long: `heapp predicts whether multi-element alloys form solid solutions or
intermetallic phases, using thermodynamic and geometric descriptors computed
from elemental reference data.

Calculate a single composition, sweep a composition space, filter the
results with descriptor restrictions and export them to CSV or Excel.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory with periodic_table.json and the enthalpy tables (default: embedded dataset)")
	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "Directory to start searching for "+projectconfig.FileName)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if a.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		cfg, err := projectconfig.Load(a.configDir)
		if err != nil {
			return err
		}
		a.cfg = cfg
		if cfg.Dir() != "" {
			slog.Debug("loaded project config", "dir", cfg.Dir())
		}
		slog.Debug("running command", append([]any{"command", cmd.CommandPath()}, changedFlags(cmd.Flags())...)...)
		return nil
	}

	cmd.AddCommand(newCalcCommand(a))
	cmd.AddCommand(newBatchCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newElementsCommand(a))
	cmd.AddCommand(newFilterCommand(a))

	return cmd
}

// changedFlags returns the flags set on the command line as slog key/value
// pairs.
func changedFlags(fs *pflag.FlagSet) []any {
	var attrs []any
	fs.Visit(func(f *pflag.Flag) {
		attrs = append(attrs, f.Name, f.Value.String())
	})
	return attrs
}

// reference loads the reference data selected by --data-dir, the project
// configuration, or the embedded default, in that order.
func (a *app) reference() (*refdata.Store, error) {
	dir := a.dataDir
	if dir == "" {
		dir = a.cfg.Resolve(a.cfg.Paths.DataDir)
	}
	if dir == "" {
		return refdata.Default()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reference data directory: %w", err)
	}
	return refdata.LoadDir(dir)
}

// restriction loads the restriction file given by path, or the one named in
// the project configuration. No file means no restriction.
func (a *app) restriction(path string) (restriction.Spec, error) {
	if path == "" {
		path = a.cfg.Resolve(a.cfg.Restriction)
	}
	if path == "" {
		return nil, nil
	}
	spec, err := restriction.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading restriction: %w", err)
	}
	slog.Debug("loaded restriction", "path", path, "criteria", spec.String())
	return spec, nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
