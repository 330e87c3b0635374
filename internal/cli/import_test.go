package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hubstream/internal/ir"
)

func TestReadIssuesFile(t *testing.T) {
	issues, err := ReadIssuesFile("testdata/issues.yaml")
	require.NoError(t, err)
	require.Len(t, issues, 4)

	bug := issues[0]
	assert.Equal(t, "acme/widget", bug.Repo)
	assert.Equal(t, int64(1), bug.Number)
	assert.Equal(t, ir.TypeIssue, bug.Type)
	assert.Equal(t, []string{"bug", "p1"}, bug.Labels)
	require.NotNil(t, bug.DueOn)
	assert.Equal(t, "2024-03-20", bug.DueOn.Format("2006-01-02"))
	assert.Equal(t, "2024-03-10T12:00:00Z", bug.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"))

	merged := issues[3]
	assert.Equal(t, ir.TypePullRequest, merged.Type)
	assert.True(t, merged.RepoPrivate)
	assert.NotNil(t, merged.MergedAt)
}

func TestReadIssuesFileShapes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "sequence",
			content: "- repo: a/b\n  number: 1\n  updated_at: 2024-03-01T00:00:00Z\n",
			want:    1,
		},
		{
			name:    "mapping",
			content: "issues:\n  - repo: a/b\n    number: 1\n  - repo: a/b\n    number: 2\n",
			want:    2,
		},
		{name: "empty document", content: "", want: 0},
		{name: "mapping without issues", content: "other: 1\n", want: 0},
		{name: "scalar", content: "just text\n", wantErr: true},
		{name: "malformed", content: "issues: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "issues.yaml", tt.content)
			issues, err := ReadIssuesFile(path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, issues)
			assert.Len(t, issues, tt.want)
		})
	}
}

func TestImportCommand(t *testing.T) {
	opts := testOptions(t, "text")

	out, _, err := execute(NewImportCommand(opts), "testdata/issues.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Imported 4 issue(s): 4 inserted, 0 updated, 0 unchanged")

	out, _, err = execute(NewImportCommand(opts), "testdata/issues.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "0 inserted, 0 updated, 4 unchanged")
}

func TestImportCommandJSON(t *testing.T) {
	opts := testOptions(t, "json")

	out, _, err := execute(NewImportCommand(opts), "testdata/issues.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "testdata/issues.yaml", resp.Data.File)
	assert.Equal(t, 4, resp.Data.Inserted)
}

func TestImportCommandErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		opts := testOptions(t, "text")
		out, _, err := execute(NewImportCommand(opts), filepath.Join(t.TempDir(), "none.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E009]")
	})

	t.Run("invalid issue rejects batch", func(t *testing.T) {
		opts := testOptions(t, "json")
		path := writeFile(t, t.TempDir(), "bad.yaml", `
- repo: acme/widget
  number: 1
  updated_at: 2024-03-01T00:00:00Z
- repo: not-a-repo
  number: 2
  updated_at: 2024-03-01T00:00:00Z
`)
		out, _, err := execute(NewImportCommand(opts), path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeWriteFailed, resp.Error.Code)

		// Nothing was written.
		out, _, err = execute(NewSearchCommand(&RootOptions{Format: "text", Database: opts.Database}), "is:open")
		require.NoError(t, err)
		assert.Equal(t, "No matching issues\n", out)
	})

	t.Run("unopenable database", func(t *testing.T) {
		opts := testOptions(t, "text")
		opts.Database = filepath.Join(t.TempDir(), "missing", "dir", "issues.db")
		out, _, err := execute(NewImportCommand(opts), "testdata/issues.yaml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E008]")
	})
}
