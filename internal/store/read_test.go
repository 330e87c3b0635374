package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/querylang"
	"github.com/roach88/hubstream/internal/querysql"
	"github.com/roach88/hubstream/internal/testutil"
)

func emptyWhere() querysql.Fragment {
	return querysql.Fragment{}
}

func keys(issues []ir.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Key()
	}
	return out
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	_, err := s.UpsertIssues(context.Background(), fixtureIssues())
	require.NoError(t, err)
	return s
}

func search(t *testing.T, s *Store, query string) []string {
	t.Helper()
	compiler := querysql.NewSQLCompiler(querysql.WithClock(testutil.NewFixedClock().Now))
	c, err := compiler.Compile(querylang.ParseQuery(query))
	require.NoError(t, err)

	issues, err := s.Search(context.Background(), SearchOptions{Where: c.Where, OrderBy: c.OrderBy})
	require.NoError(t, err)
	return keys(issues)
}

func TestSearchCompiledQueries(t *testing.T) {
	s := seededStore(t)

	const (
		bug     = "acme/widget#1"
		feature = "acme/widget#2"
		pr      = "acme/gadget#3"
		merged  = "other/lib#4"
	)

	testCases := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{pr, bug, feature, merged}},
		{query: "is:open", want: []string{pr, bug}},
		{query: "-is:open", want: []string{feature, merged}},
		{query: "is:pr", want: []string{pr, merged}},
		{query: "is:issue is:closed", want: []string{feature}},
		{query: "is:merged", want: []string{merged}},
		{query: "-is:merged is:pr", want: []string{pr}},
		{query: "is:draft", want: []string{pr}},
		{query: "draft:false is:pr", want: []string{merged}},
		{query: "is:private", want: []string{merged}},
		{query: "is:read", want: []string{pr}},
		{query: "is:unread", want: []string{bug, feature, merged}},
		{query: "author:BOB", want: []string{feature}},
		{query: "-author:alice", want: []string{pr, feature, merged}},
		{query: "assignee:carol", want: []string{feature}},
		{query: "assignee:alice -assignee:bob", want: []string{bug}},
		{query: "-assignee:alice", want: []string{pr, feature, merged}},
		{query: "label:bug", want: []string{bug}},
		{query: "label:bu", want: []string{}},
		{query: "label:bug label:enhancement", want: []string{bug, feature}},
		{query: "is:open -label:bug", want: []string{pr}},
		{query: "no:label", want: []string{pr, merged}},
		{query: "have:milestone", want: []string{bug}},
		{query: "no:assignee is:pr", want: []string{pr, merged}},
		{query: "milestone:V1.0", want: []string{bug}},
		{query: "review-requested:alice", want: []string{pr}},
		{query: "reviewed-by:bob", want: []string{merged}},
		{query: "team:acme/core", want: []string{pr}},
		{query: "crash", want: []string{pr, bug}},
		{query: "crash -is:pr", want: []string{bug}},
		{query: "repo:acme/widget", want: []string{bug, feature}},
		{query: "user:ACME", want: []string{pr, bug, feature}},
		{query: "org:other", want: []string{merged}},
		{query: "number:1 number:4", want: []string{bug, merged}},
		{query: "-number:1", want: []string{pr, feature, merged}},
		{query: "foo:bar", want: []string{pr, bug, feature, merged}},
		{query: "sort:dueon", want: []string{bug}},
		{query: "sort:number", want: []string{merged, pr, feature, bug}},
		{query: "sort:title", want: []string{feature, merged, bug, pr}},
		{query: `sort:"repo, number asc"`, want: []string{pr, bug, feature, merged}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, search(t, s, tc.query))
		})
	}
}

func TestSearchHostileValues(t *testing.T) {
	s := seededStore(t)

	// Quotes and SQL in values are bound parameters, never SQL text
	assert.Empty(t, search(t, s, `author:"x') or 1=1 --"`))
	assert.Empty(t, search(t, s, `milestone:"' or ''='"`))
}

func TestSearchNonASCIIIdentity(t *testing.T) {
	s := seededStore(t)
	issue := createTestIssue("acme/widget", 5)
	issue.Author = "\u00c9mile"
	issue.Milestone = "\u00dcn\u00efcode"
	_, err := s.UpsertIssue(context.Background(), issue)
	require.NoError(t, err)

	testCases := []struct {
		query string
		want  []string
	}{
		{query: "author:\u00c9MILE", want: []string{"acme/widget#5"}},
		{query: "author:\u00e9mile", want: []string{"acme/widget#5"}},
		{query: "milestone:\u00fcn\u00efcode", want: []string{"acme/widget#5"}},
		{query: "milestone:\u00dcN\u00cfCODE", want: []string{"acme/widget#5"}},
		{query: "author:\u00e9mile -milestone:\u00fcn\u00efcode", want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.want, search(t, s, tc.query))
		})
	}
}

func TestSearchLimit(t *testing.T) {
	s := seededStore(t)

	issues, err := s.Search(context.Background(), SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/gadget#3", "acme/widget#1"}, keys(issues))
}

func TestSearchEmptyStoreReturnsEmptySlice(t *testing.T) {
	s := createTestStore(t)

	issues, err := s.Search(context.Background(), SearchOptions{})
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestSearchLabelDatePlaceholder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	today := createTestIssue("acme/widget", 10)
	today.Labels = []string{"due-2024-03-15"}
	tomorrow := createTestIssue("acme/widget", 11)
	tomorrow.Labels = []string{"due-2024-03-16"}
	_, err := s.UpsertIssues(ctx, []ir.Issue{today, tomorrow})
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/widget#10"}, search(t, s, "label:due-@current_date"))
	assert.Equal(t, []string{"acme/widget#11"}, search(t, s, "label:due-@next_date"))
}

func TestCount(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx, emptyWhere())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	c, err := querysql.NewSQLCompiler().Compile(querylang.ParseQuery("is:pr"))
	require.NoError(t, err)
	n, err = s.Count(ctx, c.Where)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReadIssueNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadIssue(context.Background(), "acme/widget#404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBuildSearch(t *testing.T) {
	query, args := buildSearch(SearchOptions{
		Where:   querysql.Fragment{SQL: "closed_at is null and title like ?", Args: []any{"x"}},
		OrderBy: "number desc",
		Limit:   5,
	})

	assert.Contains(t, query, " WHERE closed_at is null and title like ?")
	assert.Contains(t, query, " ORDER BY number desc, issue_key COLLATE BINARY ASC LIMIT ?")
	assert.Equal(t, []any{"x", 5}, args)

	query, args = buildSearch(SearchOptions{})
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY updated_at desc")
	assert.Empty(t, args)
}
