package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hubstream/internal/store"
)

// MarkOptions holds flags for the mark command.
type MarkOptions struct {
	*RootOptions
	State string
	Clear bool
}

// MarkResult is the JSON payload of the mark command.
type MarkResult struct {
	Key   string     `json:"key"`
	State string     `json:"state"`
	At    *time.Time `json:"at,omitempty"`
}

// NewMarkCommand creates the mark command.
func NewMarkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mark <owner/name#number>...",
		Short: "Mark issues read, bookmarked or archived",
		Long: `Set or clear a local state on issues in the store.

The states feed is:read, is:bookmark, is:archived and the matching sort
keys. An issue counts as read only while it has not been updated since.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMark(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.State, "state", "s", string(store.StateRead), "state to set (read|bookmark|archived)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "clear the state instead of setting it")

	return cmd
}

func runMark(opts *MarkOptions, keys []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	state := store.State(opts.State)
	switch state {
	case store.StateRead, store.StateBookmark, store.StateArchived:
	default:
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("unknown state %q", opts.State), nil)
	}

	var at *time.Time
	if !opts.Clear {
		now := time.Now
		if opts.Clock != nil {
			now = opts.Clock
		}
		t := now().UTC()
		at = &t
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "opening store", err)
	}
	defer st.Close()

	results := make([]MarkResult, 0, len(keys))
	for _, key := range keys {
		err := st.SetState(cmd.Context(), key, state, at)
		if errors.Is(err, sql.ErrNoRows) {
			return formatter.fail(ExitFailure, ErrCodeNoIssue, fmt.Sprintf("issue not found: %s", key), nil)
		}
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, "updating issue", err)
		}
		slog.Debug("issue state changed", "key", key, "state", state, "cleared", opts.Clear)
		results = append(results, MarkResult{Key: key, State: string(state), At: at})
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	verb := "Marked"
	if opts.Clear {
		verb = "Cleared"
	}
	for _, r := range results {
		fmt.Fprintf(formatter.Writer, "✓ %s %s %s\n", verb, r.State, r.Key)
	}
	return nil
}
