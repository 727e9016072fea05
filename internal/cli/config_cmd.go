package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/peoplegrid/internal/config"
)

const tabPadding = 2

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		newConfigInitCmd(app), newConfigGetCmd(app), newConfigSetCmd(app),
		newConfigListCmd(app), newConfigPathCmd(app), newConfigValidateCmd(app),
	)
	return cmd
}

func newConfigInitCmd(app *appState) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Example: `  # Create ~/.peoplegrid/config.yaml
  peoplegrid config init

  # Overwrite an existing file
  peoplegrid config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Init(app.cfg.Path(), force)
			if err != nil {
				return err
			}
			cmd.Printf("Configuration initialized at %s\n", cfg.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}

func newConfigGetCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:     "get <section.key>",
		Short:   "Print the effective value of a configuration key",
		Example: `  peoplegrid config get api.results`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.cfg.Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

func newConfigSetCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "set <section.key> <value>",
		Short: "Set a configuration key in the config file",
		Example: `  peoplegrid config set api.results 50
  peoplegrid config set query.stale_time 30s
  peoplegrid config set output.default_format json`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(app.cfg.Path())
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			cmd.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigListCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := app.cfg.Keys()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			for _, kv := range keys {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", kv[0], kv[1]); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}

func newConfigPathCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(app.cfg.Path())
			return nil
		},
	}
}

func newConfigValidateCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.Load(app.cfg.Path()); err != nil {
				return err
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}
}
