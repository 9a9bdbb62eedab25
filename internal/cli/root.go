// Package cli implements seriesctl, the admin command line for a seriesd
// data directory.
package cli

import (
	"fmt"
	"slices"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/seriesd/internal/config"
	"github.com/listenupapp/seriesd/internal/di"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataDir   string
	Driver    string
	StorePath string
	Format    string // "json" | "text"
	Verbose   bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for seriesctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "seriesctl",
		Short: "Administer a seriesd data directory",
		Long:  "Seed demo data, inspect series as any viewer, reconcile restricted flags and mint access tokens.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.seriesd)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "store", "", "store driver (sqlite|badger)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store-path", "", "database path (default inside the data directory)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")

	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// session opens the container the way the server does, with logging turned
// down so command output stays readable.
func (o *RootOptions) session() (*do.RootScope, error) {
	level := "error"
	if o.Verbose {
		level = "debug"
	}
	args := []string{"-log-level", level, "-log-format", "json"}
	for flag, value := range map[string]string{
		"-data-dir":   o.DataDir,
		"-store":      o.Driver,
		"-store-path": o.StorePath,
	} {
		if value != "" {
			args = append(args, flag, value)
		}
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	return di.NewContainer(cfg), nil
}

// withSession runs fn against a fresh container and shuts it down afterwards.
func (o *RootOptions) withSession(fn func(do.Injector) error) error {
	injector, err := o.session()
	if err != nil {
		return err
	}
	defer func() { _ = injector.Shutdown() }()
	return fn(injector)
}
