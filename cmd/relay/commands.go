package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/relay/internal/cli"
	"github.com/toyz/relay/internal/utils"
)

// options are the persistent flags shared by every command
type options struct {
	configFile string
	module     string
	output     string
	fx         bool
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "relay",
		Short: "relay - HTTP client generator for annotated Go interfaces",
		Long: `relay scans Go packages for interfaces marked with //relay::client and
generates their declaration tables, adapters and constructors.

Directory patterns:
  ./...              Scan current directory and all subdirectories recursively
  ./internal/...     Scan internal directory and all its subdirectories
  ./pkg/clients      Scan only the specific directory (no recursion)

Examples:
  relay generate ./...                  # Generate every client
  relay generate --fx ./internal/...    # Also emit fx providers
  relay clean ./...                     # Delete generated files
  relay watch ./...                     # Regenerate on change`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (defaults to "+cli.DefaultConfigFile+" when present)")
	flags.StringVar(&opts.module, "module", "", "custom module name for imports (defaults to go.mod module)")
	flags.StringVar(&opts.output, "output", "", "name of the generated file in each package (default relay_gen.go)")
	flags.BoolVar(&opts.fx, "fx", false, "also generate an fx provider per client")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors and final results")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(newGenerateCmd(opts), newCleanCmd(opts), newWatchCmd(opts))
	return root
}

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [directories...]",
		Short: "Generate relay clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, diagnostics, err := opts.load(cmd, args)
			if err != nil {
				return err
			}

			diagnostics.RelayHeader("Generating clients")
			generator := cli.NewGenerator(diagnostics)
			if err := generator.Run(cfg); err != nil {
				return fmt.Errorf("generation failed")
			}

			summary := generator.GetSummary()
			diagnostics.Summary("Generation complete!", []string{"Packages scanned", "Clients found", "Methods found", "Files written", "Files unchanged", "Stale files removed"},
				map[string]any{
					"Packages scanned":    summary.PackagesScanned,
					"Clients found":       summary.ClientsFound,
					"Methods found":       summary.MethodsFound,
					"Files written":       len(summary.GeneratedFiles),
					"Files unchanged":     len(summary.UnchangedFiles),
					"Stale files removed": len(summary.RemovedFiles),
				})
			return nil
		},
	}
}

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Delete generated relay files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, diagnostics, err := opts.load(cmd, args)
			if err != nil {
				return err
			}

			diagnostics.RelayHeader("Cleaning generated files")
			removed, err := cli.NewCleaner(cfg.Output).CleanGeneratedFiles(cfg.Directories)
			for _, path := range removed {
				diagnostics.PhaseItem("removed %s", path)
			}
			if err != nil {
				return err
			}
			diagnostics.Info("%d generated files removed", len(removed))
			return nil
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [directories...]",
		Short: "Regenerate relay clients whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, diagnostics, err := opts.load(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			diagnostics.RelayHeader("Watching for changes (Ctrl+C to stop)")
			return cli.NewWatcher(cli.NewGenerator(diagnostics), cfg, diagnostics).Watch(ctx)
		},
	}
}

// load merges the flags over the config file and builds the diagnostic system
func (o *options) load(cmd *cobra.Command, args []string) (cli.Config, *utils.DiagnosticSystem, error) {
	if o.verbose && o.quiet {
		return cli.Config{}, nil, fmt.Errorf("--verbose and --quiet cannot be combined")
	}
	path, optional := o.configFile, false
	if path == "" {
		path, optional = cli.DefaultConfigFile, true
	}
	fileCfg, err := cli.LoadConfig(path, optional)
	if err != nil {
		return cli.Config{}, nil, err
	}

	cfg := fileCfg.Merge(cli.Config{
		Directories: args,
		ModuleName:  o.module,
		Output:      o.output,
		Fx:          o.fx,
		Verbose:     o.verbose,
		Quiet:       o.quiet,
	})
	if cmd.Flags().Changed("verbose") || cmd.Flags().Changed("quiet") {
		cfg.Verbose, cfg.Quiet = o.verbose, o.quiet
	}
	if len(cfg.Directories) == 0 {
		cfg.Directories = []string{"./..."}
	}

	return cfg, newDiagnostics(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()), nil
}

func newDiagnostics(cfg cli.Config, out, errOut io.Writer) *utils.DiagnosticSystem {
	level := utils.DiagnosticInfo
	switch {
	case cfg.Quiet:
		level = utils.DiagnosticError
	case cfg.Verbose:
		level = utils.DiagnosticVerbose
	}
	diagnostics := utils.NewDiagnosticSystem(level)
	if out != os.Stdout || errOut != os.Stderr {
		diagnostics.WithWriters(out, errOut)
	}
	return diagnostics
}
