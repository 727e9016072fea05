// Package cli implements the peoplegrid command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/peoplegrid/internal/config"
	"github.com/rshade/peoplegrid/internal/logging"
	"github.com/rshade/peoplegrid/internal/randomuser"
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUpstream = 2
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Required for zerolog context integration

// appState is shared by every subcommand of one root command. It is filled in by
// the root's PersistentPreRunE.
type appState struct {
	cfg       *config.Config
	logResult *logging.Result

	debug      bool
	configPath string
	diskCache  bool
}

// NewRootCmd creates the root Cobra command for the peoplegrid CLI.
// It wires up configuration, logging, tracing and the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	app := &appState{}

	cmd := &cobra.Command{
		Use:   "peoplegrid",
		Short: "Browse and filter people from the random-user API",
		Long: `peoplegrid pages through people served by the random-user API, in an
interactive grid or as table, JSON, NDJSON or YAML output, and can serve the
same queries over HTTP.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd, app)
			app.logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(app.logResult)
		},
	}

	cmd.PersistentFlags().BoolVar(&app.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&app.configPath, "config", "",
		"YAML file whose top-level sections replace those of the loaded configuration")
	cmd.PersistentFlags().BoolVar(&app.diskCache, "disk-cache", false,
		"persist query results on disk (overrides cache.enabled)")

	cmd.AddCommand(
		newBrowseCmd(app), newListCmd(app), newServeCmd(app),
		newConfigCmd(app), newCacheCmd(app),
	)
	return cmd
}

const rootCmdExample = `  # Browse people interactively
  peoplegrid browse

  # Print page 3 with 10 people per page as JSON
  peoplegrid list --page 3 --results 10 --output json

  # Women aged 25 to 35 from one large batch, oldest first
  peoplegrid list --all --gender female --min-age 25 --max-age 35 --sort age:desc

  # Serve the queries over HTTP
  peoplegrid serve --addr :8080

  # Set configuration values
  peoplegrid config set api.results 50`

// loadConfig reads .env files, the config file and the --config overlay, then applies
// flag overrides. Config subcommands tolerate a broken file so that it can be fixed.
func (a *appState) loadConfig(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(config.DotEnvPaths()...); err != nil {
		cmd.PrintErrf("Warning: could not load .env: %v\n", err)
	}

	cfg, err := config.New()
	if err != nil {
		if !isConfigCommand(cmd) {
			return fmt.Errorf("loading configuration: %w", err)
		}
		dir, dirErr := config.GetConfigDir()
		if dirErr != nil {
			return dirErr
		}
		cmd.PrintErrf("Warning: %v\n", err)
		cfg = config.Default(dir)
	}

	if a.configPath != "" {
		if err := config.ShallowMergeYAML(cfg, a.configPath); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration after applying %s: %w", a.configPath, err)
		}
	}
	if cmd.Flags().Changed("disk-cache") {
		cfg.Cache.Enabled = a.diskCache
	}

	a.cfg = cfg
	return nil
}

func isConfigCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

// ExitCode maps a command error to the process exit code. Failures talking to the
// upstream API get their own code so scripts can tell them apart.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, randomuser.ErrNetwork), errors.Is(err, randomuser.ErrServer):
		return ExitUpstream
	default:
		return ExitFailure
	}
}
