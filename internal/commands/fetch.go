package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-oasis/internal/app"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

// fetchEnv is what a fetch needs from configuration.
type fetchEnv struct {
	Quotes  *app.QuoteService
	PageURL string
}

// serviceFactory builds the fetch environment for a profile. Logs go to logOut.
type serviceFactory func(profile, logLevel string, logOut io.Writer) (*fetchEnv, error)

func defaultServiceFactory(profile, logLevel string, logOut io.Writer) (*fetchEnv, error) {
	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   logLevel,
		Format:  "pretty",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, logOut)

	quoteClient, err := acl.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	quotes := app.NewQuoteService(app.QuoteServiceConfig{QuoteClient: quoteClient, Logger: logger})

	return &fetchEnv{Quotes: quotes, PageURL: cfg.Widget.PageURL}, nil
}

// fetchOptions are the flags of the fetch command.
type fetchOptions struct {
	Categories []string
	Profile    string
	LogLevel   string
	Parallel   int
	Output     OutputOptions
}

type fetchResult struct {
	Category     domain.Category      `json:"category"`
	Quote        string               `json:"quote"`
	Author       string               `json:"author"`
	ShareTargets []domain.ShareTarget `json:"shareTargets,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// errFetchFailed is returned after printing when at least one fetch failed.
var errFetchFailed = errors.New("one or more fetches failed")

func addFetch(topLevel *cobra.Command, factory serviceFactory) {
	fo := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a quote for one or more categories.",
		Example: `
quotectl fetch
quotectl fetch --category life --category money
APP_SERVICES_QUOTE_API_KEY=... quotectl fetch -c humor --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := parseCategories(fo.Categories)
			if err != nil {
				return err
			}

			env, err := factory(fo.Profile, fo.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			results := env.Quotes.FetchMany(cmd.Context(), categories, fo.Parallel)

			out := make([]fetchResult, len(results))
			failed := false
			for i, r := range results {
				out[i] = toFetchResult(categories[i], r, env.PageURL)
				if r.Err != nil {
					failed = true
				}
			}

			if fo.Output.JSON {
				err = fo.Output.Print(cmd.OutOrStdout(), out)
			} else {
				err = printResults(cmd.OutOrStdout(), out)
			}
			if err != nil {
				return err
			}

			if failed {
				return errFetchFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&fo.Categories, "category", "c", []string{domain.DefaultCategory.String()},
		"Category to fetch. Repeat for several.")
	cmd.Flags().StringVar(&fo.Profile, "profile", "local", "Configuration profile under configs/.")
	cmd.Flags().StringVar(&fo.LogLevel, "log-level", "warn", "Log level for diagnostics on stderr.")
	cmd.Flags().IntVarP(&fo.Parallel, "parallel", "p", 4, "Maximum concurrent requests.")
	AddOutputArg(cmd, &fo.Output)

	topLevel.AddCommand(cmd)
}

func parseCategories(raw []string) ([]domain.Category, error) {
	seen := make(map[domain.Category]bool, len(raw))
	categories := make([]domain.Category, 0, len(raw))
	for _, s := range raw {
		c, err := domain.ParseCategory(s)
		if err != nil {
			return nil, fmt.Errorf("--category %q: %w", s, err)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	return categories, nil
}

// toFetchResult applies the same fallback the widget shows on failure.
func toFetchResult(category domain.Category, r app.PartialResult[*domain.Quote], pageURL string) fetchResult {
	if r.Err != nil {
		fallback := domain.FallbackQuoteRecord()
		return fetchResult{
			Category: category,
			Quote:    fallback.Text,
			Author:   fallback.Author,
			Error:    r.Err.Error(),
		}
	}

	return fetchResult{
		Category: category,
		Quote:    r.Value.Text,
		Author:   r.Value.Author,
		ShareTargets: domain.BuildShareTargets(domain.ShareInput{
			Quote:    r.Value.Text,
			Author:   r.Value.Author,
			Category: category,
			PageURL:  pageURL,
		}),
	}
}

// printResults renders each result into a buffer and writes it in one call,
// so a failing writer is reported on the first result.
func printResults(w io.Writer, results []fetchResult) error {
	heading := color.New(color.Bold, color.FgCyan)
	quote := color.New(color.Italic)
	failure := color.New(color.FgHiRed)
	faint := color.New(color.Faint)

	var b strings.Builder
	for _, r := range results {
		b.Reset()
		b.WriteString(heading.Sprint(r.Category) + "\n")

		text := quote
		if r.Error != "" {
			text = failure
		}
		fmt.Fprintf(&b, "  %s\n  - %s\n", text.Sprint("\""+r.Quote+"\""), r.Author)

		if r.Error != "" {
			b.WriteString(faint.Sprint("  ", r.Error) + "\n")
		}

		if len(r.ShareTargets) > 0 {
			tbl := uitable.New()
			tbl.Separator = "  "
			for _, t := range r.ShareTargets {
				tbl.AddRow("  "+t.ID, faint.Sprint(t.Href))
			}
			b.WriteString(tbl.String() + "\n")
		}
		b.WriteString("\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("writing %s: %w", r.Category, err)
		}
	}
	return nil
}
