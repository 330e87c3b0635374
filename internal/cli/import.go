package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	File string `json:"file"`
	store.UpsertStats
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <issues.yaml>",
		Short: "Load issues from a YAML file into the store",
		Long: `Import issues and pull requests from a YAML file into the local store.

The file holds either a list of issues or a mapping with an "issues" key.
Issues are keyed by repo and number; re-importing an unchanged issue is a
no-op. The import is all or nothing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	issues, err := ReadIssuesFile(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadInput, "reading issues file", err)
	}
	formatter.VerboseLog("Read %d issue(s) from %s", len(issues), path)

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "opening store", err)
	}
	defer st.Close()

	stats, err := st.UpsertIssues(cmd.Context(), issues)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeWriteFailed, "importing issues", err)
	}
	slog.Info("issues imported",
		"file", path,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged)

	if formatter.Format == "json" {
		return formatter.Success(ImportResult{File: path, UpsertStats: stats})
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d issue(s): %d inserted, %d updated, %d unchanged\n",
		len(issues), stats.Inserted, stats.Updated, stats.Unchanged)
	return nil
}

// ReadIssuesFile decodes a YAML issues file: either a sequence of issues or
// a mapping with an "issues" sequence.
func ReadIssuesFile(path string) ([]ir.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return []ir.Issue{}, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		issues := []ir.Issue{}
		if err := root.Decode(&issues); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return issues, nil
	case yaml.MappingNode:
		var wrapper struct {
			Issues []ir.Issue `yaml:"issues"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if wrapper.Issues == nil {
			return []ir.Issue{}, nil
		}
		return wrapper.Issues, nil
	default:
		return nil, errors.New("issues file must hold a list or an \"issues\" mapping")
	}
}

// openStore opens the configured issue database.
func openStore(opts *RootOptions) (*store.Store, error) {
	if opts.Database == "" {
		return nil, errors.New("no database configured (use --db)")
	}
	return store.Open(opts.Database)
}
