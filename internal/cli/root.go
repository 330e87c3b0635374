package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hubstream/internal/querysql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string
	StreamsDir string
	LogLevel   string
	LogFormat  string
	Limit      int

	// Clock expands date placeholders. Nil means time.Now.
	Clock func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hubstream CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hubstream",
		Short: "hubstream - GitHub search queries over a local issue mirror",
		Long: `hubstream compiles GitHub-style search queries such as
"is:open assignee:me -label:wontfix sort:updated" into SQLite filters and
runs them against a local mirror of issues and pull requests.

Saved searches ("streams") are defined in CUE files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				if _, err := queryArgs(cmd, args); err != nil {
					return err
				}
			}
			return opts.load(cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default ./hubstream.yaml)")
	flags.StringVar(&opts.Database, "db", "hubstream.db", "path to the SQLite issue database")
	flags.StringVar(&opts.StreamsDir, "streams", "streams", "directory holding stream definitions (*.cue)")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json|color)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewMarkCommand(opts))
	cmd.AddCommand(NewStreamsCommand(opts))

	return cmd
}

// load merges the config file and environment into opts and installs the
// default logger. Flags set on the command line win.
func (opts *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(opts.ConfigFile, cmd.Flags())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return WrapExitError(ExitCommandError, "loading config", err)
	}

	opts.Format = cfg.Output.Format
	opts.Database = cfg.Database
	opts.StreamsDir = cfg.StreamsDir
	opts.LogLevel = cfg.Logging.Level
	opts.LogFormat = cfg.Logging.Format
	if opts.Limit == 0 {
		opts.Limit = cfg.Search.Limit
	}

	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return WrapExitError(ExitCommandError, "configuring logger", err)
	}
	slog.SetDefault(logger)
	slog.Debug("config loaded",
		"database", opts.Database,
		"streams", opts.StreamsDir,
		"format", opts.Format)
	return nil
}

// newCompiler returns a query compiler using the configured clock.
func (opts *RootOptions) newCompiler() *querysql.SQLCompiler {
	if opts.Clock == nil {
		return querysql.NewSQLCompiler()
	}
	return querysql.NewSQLCompiler(querysql.WithClock(opts.Clock))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
