package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/hubstream/internal/compiler"
	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/querysql"
	"github.com/roach88/hubstream/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
	Count bool
}

// SearchResult is the JSON payload of the search and streams run commands.
type SearchResult struct {
	Query  string     `json:"query"`
	Count  int        `json:"count"`
	Issues []ir.Issue `json:"issues,omitempty"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search the issue store",
		Long: `Compile a search query and run it against the issue store.

Results are ordered by the query's sort: clause, else by most recently
updated, with the issue key breaking ties.

Negated qualifiers may come first: "hubstream search -label:wontfix".`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true, // see queryArgs
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queryArgs(cmd, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				opts.Limit = opts.RootOptions.Limit
			}
			return runSearch(opts, query, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of results (0 for no limit)")
	cmd.Flags().BoolVarP(&opts.Count, "count", "c", false, "print only the number of matches")

	return cmd
}

func runSearch(opts *SearchOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	compiled, err := compiler.CompileQuery(opts.newCompiler(), query)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "compiling query", err)
	}
	formatter.VerboseLog("where: %s", orDash(compiled.FilterExpression()))
	formatter.VerboseLog("order: %s", orDash(compiled.OrderByExpression()))

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "opening store", err)
	}
	defer st.Close()

	return runCompiled(cmd, formatter, st, query, compiled, opts.Limit, opts.Count)
}

// runCompiled executes a compiled query and prints the result.
func runCompiled(cmd *cobra.Command, formatter *OutputFormatter, st *store.Store, label string, compiled querysql.Compiled, limit int, countOnly bool) error {
	ctx := cmd.Context()
	result := SearchResult{Query: label}

	if countOnly {
		n, err := st.Count(ctx, compiled.Where)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "counting issues", err)
		}
		result.Count = n
	} else {
		issues, err := st.Search(ctx, store.SearchOptions{
			Where:   compiled.Where,
			OrderBy: compiled.OrderBy,
			Limit:   limit,
		})
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "searching issues", err)
		}
		result.Count = len(issues)
		result.Issues = issues
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithWarnings(result, warnings(compiled))
	}

	if countOnly {
		fmt.Fprintln(formatter.Writer, result.Count)
	} else {
		printIssues(formatter.Writer, result.Issues)
	}
	for _, warning := range warnings(compiled) {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: %s\n", warning)
	}
	return nil
}

// printIssues writes one line per issue: key, state, type, title.
func printIssues(w io.Writer, issues []ir.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No matching issues")
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "%-28s %-6s %-5s %s\n", issue.Key(), issueState(issue), issue.Type, issue.Title)
	}
}

func issueState(issue ir.Issue) string {
	switch {
	case issue.MergedAt != nil:
		return "merged"
	case issue.ClosedAt != nil:
		return "closed"
	default:
		return "open"
	}
}
