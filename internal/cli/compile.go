package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hubstream/internal/compiler"
	"github.com/roach88/hubstream/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Params bool // print the parameterized SQL and its arguments
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Query    string   `json:"query"`
	Filter   string   `json:"filter"`
	OrderBy  string   `json:"order_by"`
	SQL      string   `json:"sql"`
	Args     []any    `json:"args"`
	Warnings []string `json:"-"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query>...",
		Short: "Compile a search query to SQL",
		Long: `Compile a GitHub-style search query to an SQLite filter expression
and ORDER BY list. Arguments are joined with spaces into one query.

Tokens that do not affect the result (unknown flags, unknown sort
columns, non-numeric numbers) are reported as warnings.

Negated qualifiers may come first: "hubstream compile -label:bug is:open".
Use "--" before a query token that collides with a flag such as -v.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true, // see queryArgs
		SilenceUsage:       true, // Don't print usage on errors - we handle our own error output
		SilenceErrors:      true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := queryArgs(cmd, args)
			if err != nil {
				return err
			}
			return runCompile(opts, query, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Params, "params", false, "print parameterized SQL with separate arguments")

	return cmd
}

func runCompile(opts *CompileOptions, query string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	compiled, err := compiler.CompileQuery(opts.newCompiler(), query)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeGeneric, "compiling query", err)
	}

	result := newCompilationResult(query, compiled)
	formatter.VerboseLog("Compiled %q with %d argument(s)", query, len(result.Args))

	if formatter.Format == "json" {
		return formatter.SuccessWithWarnings(result, result.Warnings)
	}

	w := formatter.Writer
	if opts.Params {
		fmt.Fprintf(w, "where: %s\n", orDash(result.SQL))
		fmt.Fprintf(w, "args:  %v\n", result.Args)
	} else {
		fmt.Fprintf(w, "where: %s\n", orDash(result.Filter))
	}
	fmt.Fprintf(w, "order: %s\n", orDash(result.OrderBy))
	for _, warning := range result.Warnings {
		fmt.Fprintf(formatter.GetErrWriter(), "warning: %s\n", warning)
	}
	return nil
}

func newCompilationResult(query string, compiled querysql.Compiled) CompilationResult {
	args := compiled.Where.Args
	if args == nil {
		args = []any{}
	}
	return CompilationResult{
		Query:    query,
		Filter:   compiled.FilterExpression(),
		OrderBy:  compiled.OrderByExpression(),
		SQL:      compiled.Where.SQL,
		Args:     args,
		Warnings: warnings(compiled),
	}
}

// warnings renders compiler diagnostics for display.
func warnings(compiled querysql.Compiled) []string {
	var out []string
	for _, d := range compiled.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
