package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/peoplegrid/internal/tui"
)

const browseCmdName = "browse"

// newBrowseCmd creates the interactive browser command.
func newBrowseCmd(app *appState) *cobra.Command {
	var (
		results int
		seed    string
		page    int
		all     bool
	)

	cmd := &cobra.Command{
		Use:   browseCmdName,
		Short: "Browse people in an interactive grid",
		Long: `Opens a full-screen grid of people. The number of columns follows the
terminal width. Page with n/p, switch to the locally filtered batch with a, edit
filters with f, reset them with x, refetch with r and quit with q.

Logs go to the configured log file, or ~/.peoplegrid/logs/peoplegrid.log.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return errors.New("browse needs an interactive terminal; use 'peoplegrid list' instead")
			}
			if !cmd.Flags().Changed("results") {
				results = app.cfg.API.Results
			}

			svc, err := app.newServices()
			if err != nil {
				return err
			}

			mode := tui.ModePaged
			if all {
				mode = tui.ModeAll
			}
			return tui.Run(cmd.Context(), tui.Deps{
				Client:    svc.client,
				Queries:   svc.queries,
				Filters:   svc.filters,
				Results:   results,
				Seed:      seed,
				StartPage: page,
				StartMode: mode,
			})
		},
	}

	cmd.Flags().IntVar(&results, "results", 0, "people per page (default from api.results)")
	cmd.Flags().StringVar(&seed, "seed", "", "seed for reproducible pages")
	cmd.Flags().IntVar(&page, "page", 1, "page to start on")
	cmd.Flags().BoolVar(&all, "all", false, "start in the filtered batch view")

	return cmd
}
