package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileText(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		where string
		order string
	}{
		{
			name:  "flag and contains",
			args:  []string{"is:open", "assignee:alice"},
			where: `closed_at is null and (assignees like "%<<<<alice>>>>%")`,
			order: "-",
		},
		{
			name:  "single argument query",
			args:  []string{"is:pr -author:bot sort:created"},
			where: `type = 'pr' and (author is not null and lower(author) not in ("bot"))`,
			order: "created_at desc",
		},
		{
			name:  "dueon sort adds predicates",
			args:  []string{"sort:dueon"},
			where: "closed_at is null and due_on is not null",
			order: "due_on asc",
		},
		{
			name:  "date placeholder uses clock",
			args:  []string{"label:@current_date"},
			where: `(labels like "%<<<<2024%03%15>>>>%")`,
			order: "-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "text")
			out, stderr, err := execute(NewCompileCommand(opts), tt.args...)
			require.NoError(t, err)

			assert.Equal(t, "where: "+tt.where+"\norder: "+tt.order+"\n", out)
			assert.Empty(t, stderr)
		})
	}
}

func TestCompileParams(t *testing.T) {
	opts := testOptions(t, "text")
	out, _, err := execute(NewCompileCommand(opts), "--params", "number:7", "repo:Acme/Widget")
	require.NoError(t, err)

	assert.Equal(t,
		"where: (number is not null and number in (?)) and (repo is not null and lower(repo) in (?))\n"+
			"args:  [7 acme/widget]\n"+
			"order: -\n",
		out)
}

func TestCompileWarningsGoToStderr(t *testing.T) {
	opts := testOptions(t, "text")
	out, stderr, err := execute(NewCompileCommand(opts), "foo:bar is:bogus sort:nope")
	require.NoError(t, err)

	assert.Equal(t, "where: -\norder: -\n", out)
	assert.Contains(t, stderr, `warning: unknown-key: "foo:bar"`)
	assert.Contains(t, stderr, `warning: unknown-flag: "is:bogus"`)
	assert.Contains(t, stderr, `warning: unknown-sort: "nope"`)
}

func TestCompileJSON(t *testing.T) {
	opts := testOptions(t, "json")
	out, _, err := execute(NewCompileCommand(opts), "is:closed", "label:bug", "number:x")
	require.NoError(t, err)

	var resp struct {
		Status   string            `json:"status"`
		Data     CompilationResult `json:"data"`
		Warnings []string          `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "is:closed label:bug number:x", resp.Data.Query)
	assert.Equal(t, `closed_at is not null and (labels like "%<<<<bug>>>>%")`, resp.Data.Filter)
	assert.Equal(t, "closed_at is not null and (labels like ?)", resp.Data.SQL)
	assert.Equal(t, []any{"%<<<<bug>>>>%"}, resp.Data.Args)
	assert.Equal(t, []string{`bad-number: "number:x"`}, resp.Warnings)
}

func TestCompileLeadingNegation(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		where string
	}{
		{
			name:  "negated list",
			args:  []string{"-assignee:bob"},
			where: `(assignees is null or (assignees not like "%<<<<bob>>>>%"))`,
		},
		{
			name:  "negated flag",
			args:  []string{"-is:open"},
			where: "closed_at is not null",
		},
		{
			name:  "negated flag before qualifier",
			args:  []string{"-is:open", "label:bug"},
			where: `closed_at is not null and (labels like "%<<<<bug>>>>%")`,
		},
		{
			name:  "single argument",
			args:  []string{"-label:bug is:open"},
			where: `closed_at is null and (labels is null or (labels not like "%<<<<bug>>>>%"))`,
		},
		{
			name:  "double dash keeps flag-like token",
			args:  []string{"--", "-v"},
			where: `(title like "%-v%" or body like "%-v%" or user like "%-v%" or repo like "%-v%" or ` +
				`author like "%-v%" or assignees like "%-v%" or labels like "%-v%" or milestone like "%-v%" or ` +
				`involves like "%-v%" or mentions like "%-v%" or review_requested like "%-v%" or reviews like "%-v%")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "text")
			out, _, err := execute(NewCompileCommand(opts), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, "where: "+tt.where+"\norder: -\n", out)
		})
	}
}

func TestCompileParamsAfterNegation(t *testing.T) {
	opts := testOptions(t, "text")
	out, _, err := execute(NewCompileCommand(opts), "-label:bug", "--params")
	require.NoError(t, err)

	assert.Equal(t,
		"where: (labels is null or (labels not like ?))\n"+
			"args:  [%<<<<bug>>>>%]\n"+
			"order: -\n",
		out)
}

func TestCompileThroughRoot(t *testing.T) {
	isolateConfig(t)

	out, _, err := execute(NewRootCommand(), "compile", "-is:open", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "-is:open", resp.Data.Query)
	assert.Equal(t, "closed_at is not null", resp.Data.Filter)
}

func TestCompileArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no query", args: []string{}, want: "requires a search query"},
		{name: "flags only", args: []string{"--params"}, want: "requires a search query"},
		{name: "unknown long flag", args: []string{"--bogus", "is:open"}, want: "unknown flag: --bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "text")
			_, _, err := execute(NewCompileCommand(opts), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileHelp(t *testing.T) {
	out, _, err := execute(NewCompileCommand(testOptions(t, "text")), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Compile a GitHub-style search query")
}
