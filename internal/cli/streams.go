package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/hubstream/internal/compiler"
	"github.com/roach88/hubstream/internal/ir"
)

// StreamsOptions holds flags for the streams commands.
type StreamsOptions struct {
	*RootOptions
	Limit int
	Count bool
}

// StreamSummary is one row of streams list output.
type StreamSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Queries int    `json:"queries"`
	Filter  string `json:"filter,omitempty"`
	Color   string `json:"color,omitempty"`
	Hash    string `json:"hash"`
}

// NewStreamsCommand creates the streams command and its subcommands.
func NewStreamsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StreamsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "streams",
		Short: "Work with saved searches defined in CUE",
		Long: `Streams are named saved searches defined in the CUE files of the
streams directory:

	streams: review: {
		queries: ["review-requested:me", "reviewed-by:me"]
		filter:  "is:open sort:updated"
		color:   "#1f6feb"
	}

A stream shows the union of its queries, narrowed by its filter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newStreamsListCommand(opts))
	cmd.AddCommand(newStreamsRunCommand(opts))
	cmd.AddCommand(newStreamsWatchCommand(opts))

	return cmd
}

func newStreamsListCommand(opts *StreamsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List and validate stream definitions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreamsList(opts, cmd)
		},
	}
}

func newStreamsRunCommand(opts *StreamsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run <name>",
		Short:         "Run a stream against the issue store",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				opts.Limit = opts.RootOptions.Limit
			}
			return runStreamsRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of results (0 for no limit)")
	cmd.Flags().BoolVarP(&opts.Count, "count", "c", false, "print only the number of matches")

	return cmd
}

func newStreamsWatchCommand(opts *StreamsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate stream definitions when they change",
		Long: `Watch the streams directory and reload it whenever a CUE file is
written, created, renamed or removed. Each reload is validated and the
added, removed and changed streams are reported. Stops on SIGINT/SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStreamsWatch(ctx, opts, cmd)
		},
	}
}

func runStreamsList(opts *StreamsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, errs := LoadStreams(opts.StreamsDir, LoadModeCollectAll)
	if result == nil {
		return outputLoadErrors(formatter, errs, ExitCommandError)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, opts.StreamsDir)
	if len(errs) > 0 {
		return outputLoadErrors(formatter, errs, ExitFailure)
	}

	summaries := make([]StreamSummary, len(result.Streams))
	for i, s := range result.Streams {
		summaries[i] = StreamSummary{
			ID:      s.ID,
			Name:    s.Name,
			Queries: len(s.Queries),
			Filter:  s.Filter,
			Color:   s.Color,
			Hash:    ir.StreamHash(s),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d stream(s) valid\n\n", len(summaries))
	for _, s := range summaries {
		fmt.Fprintf(formatter.Writer, "  %-20s %s  %d query(s)", s.Name, s.ID, s.Queries)
		if s.Filter != "" {
			fmt.Fprintf(formatter.Writer, "  filter: %s", s.Filter)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func runStreamsRun(opts *StreamsOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, errs := LoadStreams(opts.StreamsDir, LoadModeCollectAll)
	if result == nil {
		return outputLoadErrors(formatter, errs, ExitCommandError)
	}

	spec, ok := result.Lookup(name)
	if !ok {
		return formatter.fail(ExitFailure, ErrCodeStreamNotFound, fmt.Sprintf("stream not found: %s", name), nil)
	}

	var own []error
	for _, err := range errs {
		var verr compiler.ValidationError
		if errors.As(err, &verr) && verr.Stream != name {
			slog.Warn("ignoring invalid stream", "error", err)
			continue
		}
		own = append(own, err)
	}
	if len(own) > 0 {
		return outputLoadErrors(formatter, own, ExitFailure)
	}

	compiled, err := compiler.CompileStreamQuery(opts.newCompiler(), spec)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeStreamQueries, "compiling stream", err)
	}
	formatter.VerboseLog("where: %s", orDash(compiled.FilterExpression()))
	formatter.VerboseLog("order: %s", orDash(compiled.OrderByExpression()))

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "opening store", err)
	}
	defer st.Close()

	return runCompiled(cmd, formatter, st, spec.Name, compiled, opts.Limit, opts.Count)
}

func runStreamsWatch(ctx context.Context, opts *StreamsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	err := WatchStreams(ctx, opts.StreamsDir, func(ev ReloadEvent) {
		printReload(formatter, ev)
	})
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "watching streams", err)
	}
	return nil
}

// StreamChanges lists stream names that differ between two loads.
type StreamChanges struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Empty reports whether nothing changed.
func (c StreamChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// DiffStreams compares two loads by name and content hash. Names are
// reported in sorted order.
func DiffStreams(prev, next []ir.StreamSpec) StreamChanges {
	before := make(map[string]string, len(prev))
	for _, s := range prev {
		before[s.Name] = ir.StreamHash(s)
	}

	var changes StreamChanges
	seen := make(map[string]bool, len(next))
	for _, s := range next {
		seen[s.Name] = true
		hash, ok := before[s.Name]
		switch {
		case !ok:
			changes.Added = append(changes.Added, s.Name)
		case hash != ir.StreamHash(s):
			changes.Changed = append(changes.Changed, s.Name)
		}
	}
	for name := range before {
		if !seen[name] {
			changes.Removed = append(changes.Removed, name)
		}
	}

	slices.Sort(changes.Added)
	slices.Sort(changes.Removed)
	slices.Sort(changes.Changed)
	return changes
}

// ReloadEvent is the outcome of one load of the streams directory.
type ReloadEvent struct {
	Streams []ir.StreamSpec `json:"-"`
	Changes StreamChanges   `json:"changes"`
	Errors  []error         `json:"-"`
}

// WatchStreams loads dir, then reloads it whenever a .cue file in it
// changes, calling onReload after each load. A load with errors is
// reported but does not replace the last good set of streams. Blocks
// until ctx is done.
func WatchStreams(ctx context.Context, dir string, onReload func(ReloadEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	slog.Info("watching streams", "dir", dir)

	var current []ir.StreamSpec
	reload := func() {
		result, errs := LoadStreams(dir, LoadModeCollectAll)
		if len(errs) > 0 || result == nil {
			onReload(ReloadEvent{Streams: current, Errors: errs})
			return
		}
		changes := DiffStreams(current, result.Streams)
		current = result.Streams
		onReload(ReloadEvent{Streams: current, Changes: changes})
	}
	reload()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			slog.Info("stopped watching streams", "dir", dir)
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".cue" || ev.Op&relevant == 0 {
				continue
			}
			slog.Debug("stream file changed", "file", ev.Name, "op", ev.Op.String())
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "dir", dir, "error", err)
		}
	}
}

func printReload(formatter *OutputFormatter, ev ReloadEvent) {
	if formatter.Format == "json" {
		if len(ev.Errors) > 0 {
			_ = outputErrorList(formatter, ev.Errors)
			return
		}
		_ = formatter.Success(ev)
		return
	}

	w := formatter.Writer
	if len(ev.Errors) > 0 {
		fmt.Fprintf(w, "✗ Reload failed with %d error(s)\n", len(ev.Errors))
		for _, err := range ev.Errors {
			code, message := errorCode(err)
			fmt.Fprintf(w, "  %s: %s\n", code, message)
		}
		return
	}
	if ev.Changes.Empty() {
		fmt.Fprintf(w, "✓ %d stream(s) valid, no changes\n", len(ev.Streams))
		return
	}
	fmt.Fprintf(w, "✓ %d stream(s) valid\n", len(ev.Streams))
	for _, name := range ev.Changes.Added {
		fmt.Fprintf(w, "  + %s\n", name)
	}
	for _, name := range ev.Changes.Changed {
		fmt.Fprintf(w, "  ~ %s\n", name)
	}
	for _, name := range ev.Changes.Removed {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

// outputLoadErrors prints every load or validation error and returns an
// ExitError with exitCode.
func outputLoadErrors(formatter *OutputFormatter, errs []error, exitCode int) error {
	if formatter.Format == "json" {
		if err := outputErrorList(formatter, errs); err != nil {
			return err
		}
		return NewExitError(exitCode, fmt.Sprintf("stream validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Stream validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := errorCode(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}
	return NewExitError(exitCode, fmt.Sprintf("stream validation failed with %d error(s)", len(errs)))
}

// outputErrorList writes a JSON error response carrying every error in
// Data and the first in Error.
func outputErrorList(formatter *OutputFormatter, errs []error) error {
	cliErrors := make([]CLIError, len(errs))
	for i, err := range errs {
		code, message := errorCode(err)
		cliErrors[i] = CLIError{Code: code, Message: message}
	}
	response := CLIResponse{Status: "error", Data: cliErrors}
	if len(cliErrors) > 0 {
		response.Error = &cliErrors[0]
	}
	return json.NewEncoder(formatter.Writer).Encode(response)
}
