package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/peoplegrid/internal/cli/pagination"
	"github.com/rshade/peoplegrid/internal/config"
	"github.com/rshade/peoplegrid/internal/filter"
	"github.com/rshade/peoplegrid/internal/people"
	"github.com/rshade/peoplegrid/internal/person"
)

// maxConcurrentPages bounds parallel page fetches for --pages.
const maxConcurrentPages = 4

type listParams struct {
	page    int
	results int
	seed    string
	pages   int
	all     bool

	gender string
	minAge int
	maxAge int

	sort   string
	limit  int
	offset int
	output string
}

// newListCmd creates the list command.
func newListCmd(app *appState) *cobra.Command {
	var params listParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print people from one or more pages, or from one filtered batch",
		Long: `Prints people from the random-user API.

Without --all, pages are fetched by number. A gender without --all asks the API to
filter; ages are always filtered locally. With --all a single batch is fetched and
filtered, sorted and windowed locally.`,
		Example: `  # First page as a table
  peoplegrid list

  # Pages 2 to 4 with a fixed seed, as NDJSON
  peoplegrid list --page 2 --pages 3 --seed abc --output ndjson

  # Men over 40 from one batch, youngest first, 5 at a time
  peoplegrid list --all --gender male --min-age 40 --sort age --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("output") {
				params.output = app.cfg.Output.DefaultFormat
			}
			if !cmd.Flags().Changed("results") {
				params.results = app.cfg.API.Results
			}
			return runList(cmd, app, params)
		},
	}

	cmd.Flags().IntVar(&params.page, "page", 1, "page number to fetch")
	cmd.Flags().IntVar(&params.results, "results", 0, "people per page (default from api.results)")
	cmd.Flags().StringVar(&params.seed, "seed", "", "seed for reproducible pages")
	cmd.Flags().IntVar(&params.pages, "pages", 1, "number of consecutive pages to fetch, starting at --page")
	cmd.Flags().BoolVar(&params.all, "all", false, "fetch one batch and filter it locally")
	cmd.Flags().StringVar(&params.gender, "gender", "", "male or female")
	cmd.Flags().IntVar(&params.minAge, "min-age", 0, "minimum age, inclusive")
	cmd.Flags().IntVar(&params.maxAge, "max-age", 0, "maximum age, inclusive")
	cmd.Flags().StringVar(&params.sort, "sort", "", "sort as field[:asc|desc] (with --all)")
	cmd.Flags().IntVar(&params.limit, "limit", 0, "maximum people to print (with --all)")
	cmd.Flags().IntVar(&params.offset, "offset", 0, "people to skip (with --all)")
	cmd.Flags().StringVarP(&params.output, "output", "o", config.FormatTable, "output format: table, json, ndjson, yaml")

	return cmd
}

func (p listParams) validate() error {
	switch {
	case p.page < 1:
		return errors.New("--page must be >= 1")
	case p.pages < 1:
		return errors.New("--pages must be >= 1")
	case p.results < 1 || p.results > pagination.MaxLimit:
		return fmt.Errorf("--results must be between 1 and %d", pagination.MaxLimit)
	case p.minAge < 0 || p.maxAge < 0:
		return errors.New("ages must not be negative")
	case p.minAge != 0 && p.maxAge != 0 && p.minAge > p.maxAge:
		return errors.New("--min-age must not exceed --max-age")
	case !config.IsValidFormat(p.output):
		return fmt.Errorf("unsupported output format %q (table, json, ndjson, yaml)", p.output)
	case !p.all && (p.sort != "" || p.limit != 0 || p.offset != 0):
		return errors.New("--sort, --limit and --offset require --all")
	}
	return pagination.Params{Limit: p.limit, Offset: p.offset}.Validate()
}

func runList(cmd *cobra.Command, app *appState, params listParams) error {
	if err := params.validate(); err != nil {
		return err
	}
	gender, err := person.ParseGender(params.gender)
	if err != nil {
		return err
	}

	svc, err := app.newServices()
	if err != nil {
		return err
	}
	svc.filters.Set(filter.Patch{MinAge: params.minAge, MaxAge: params.maxAge, Gender: gender})

	ctx := cmd.Context()
	var out listOutput
	switch {
	case params.all:
		out, err = listAll(ctx, svc, params)
	case gender.IsSet():
		out, err = listByGender(ctx, svc, gender)
	default:
		out, err = listPages(ctx, svc, params)
	}
	if err != nil {
		return err
	}

	logger.Debug().Ctx(ctx).Int("shown", len(out.Results)).Int("total", out.Total).Msg("list complete")
	return renderList(cmd.OutOrStdout(), params.output, out)
}

// listPages fetches consecutive pages concurrently and concatenates them in order.
func listPages(ctx context.Context, svc *services, params listParams) (listOutput, error) {
	pages := make([]*person.Page, params.pages)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for i := range pages {
		g.Go(func() error {
			pq := people.PageQuery{Page: params.page + i, Results: params.results, Seed: params.seed}
			p, err := svc.client.Fetch(gCtx, svc.queries.Paged(pq))
			if err != nil {
				return fmt.Errorf("fetching page %d: %w", pq.Page, err)
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return listOutput{}, err
	}

	state := svc.filters.Filters()
	out := listOutput{Filters: state}
	for _, p := range pages {
		out.Pages = append(out.Pages, p.Info)
		out.Total += p.Len()
		out.Results = append(out.Results, filter.Apply(state, p.Results)...)
	}
	return out, nil
}

// listByGender lets the API filter by gender; ages are applied locally.
func listByGender(ctx context.Context, svc *services, g person.Gender) (listOutput, error) {
	p, err := svc.client.Fetch(ctx, svc.queries.ByGender(g))
	if err != nil {
		return listOutput{}, err
	}
	state := svc.filters.Filters()
	return listOutput{
		Results: filter.Apply(state, p.Results),
		Pages:   []person.Info{p.Info},
		Filters: state,
		Total:   p.Len(),
	}, nil
}

// listAll fetches the all-persons batch, then filters, sorts and windows it.
func listAll(ctx context.Context, svc *services, params listParams) (listOutput, error) {
	p, err := svc.client.Fetch(ctx, svc.queries.All())
	if err != nil {
		return listOutput{}, err
	}

	state := svc.filters.Filters()
	matched := filter.Apply(state, p.Results)

	if params.sort != "" {
		field, order, err := pagination.ParseSort(params.sort)
		if err != nil {
			return listOutput{}, err
		}
		if matched, err = pagination.NewPersonSorter().Sort(matched, field, order); err != nil {
			return listOutput{}, err
		}
	}

	out := listOutput{
		Results: matched,
		Pages:   []person.Info{p.Info},
		Filters: state,
		Total:   p.Len(),
	}
	if window := (pagination.Params{Limit: params.limit, Offset: params.offset}); window.IsEnabled() {
		meta := pagination.NewMeta(window, len(matched))
		out.Results = pagination.Apply(window, matched)
		out.Pagination = &meta
	}
	return out, nil
}
