package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/hubstream/internal/ir"
	"github.com/roach88/hubstream/internal/querysql"
)

// DefaultOrderBy applies when a query carries no sort.
const DefaultOrderBy = "updated_at desc"

// issueColumns is the SELECT list scanIssue expects.
const issueColumns = `repo, user, number, type, title, body, author, milestone, draft, repo_private,
	assignees, labels, involves, mentions, review_requested, reviews, project_names,
	created_at, updated_at, closed_at, merged_at, read_at, archived_at, marked_at, due_on`

// SearchOptions selects issues with a compiled filter.
type SearchOptions struct {
	// Where is a compiled filter. Empty matches every issue.
	Where querysql.Fragment

	// OrderBy is a compiled ORDER BY list. Empty means DefaultOrderBy.
	// It is spliced into the statement, so it must come from
	// querysql.CompileSort and never from user text.
	OrderBy string

	// Limit caps the result size. Zero or negative means no limit.
	Limit int
}

// Search returns issues matching opts in a deterministic order: the
// compiled ORDER BY followed by issue_key ASC.
//
// Returns empty slice (not nil) if nothing matches.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]ir.Issue, error) {
	query, args := buildSearch(opts)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	defer rows.Close()

	issues := []ir.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}

	return issues, nil
}

// Count returns the number of issues matching where.
func (s *Store) Count(ctx context.Context, where querysql.Fragment) (int, error) {
	query := "SELECT count(*) FROM issues"
	if !where.IsEmpty() {
		query += " WHERE " + where.SQL
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, where.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return n, nil
}

// ReadIssue retrieves one issue by key ("owner/name#number").
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadIssue(ctx context.Context, key string) (ir.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE issue_key = ?", key)
	return scanIssue(row)
}

func buildSearch(opts SearchOptions) (string, []any) {
	query := "SELECT " + issueColumns + " FROM issues"
	if !opts.Where.IsEmpty() {
		query += " WHERE " + opts.Where.SQL
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = DefaultOrderBy
	}
	query += " ORDER BY " + orderBy + ", issue_key COLLATE BINARY ASC"

	args := opts.Where.Args
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(append([]any{}, args...), opts.Limit)
	}
	return query, args
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(sc scanner) (ir.Issue, error) {
	var (
		issue                                  ir.Issue
		typ                                    string
		body, author, milestone                sql.NullString
		draft, private                         int
		assignees, labels, involves, mentions  sql.NullString
		reviewRequested, reviews, projectNames sql.NullString
		createdAt                              sql.NullString
		updatedAt                              string
		closedAt, mergedAt, readAt, archivedAt sql.NullString
		markedAt, dueOn                        sql.NullString
	)

	err := sc.Scan(
		&issue.Repo, &issue.User, &issue.Number, &typ, &issue.Title,
		&body, &author, &milestone, &draft, &private,
		&assignees, &labels, &involves, &mentions, &reviewRequested, &reviews, &projectNames,
		&createdAt, &updatedAt, &closedAt, &mergedAt, &readAt, &archivedAt, &markedAt, &dueOn,
	)
	if err == sql.ErrNoRows {
		return ir.Issue{}, err
	}
	if err != nil {
		return ir.Issue{}, fmt.Errorf("scan issue: %w", err)
	}

	issue.Type = ir.IssueType(typ)
	issue.Body = body.String
	issue.Author = author.String
	issue.Milestone = milestone.String
	issue.Draft = draft != 0
	issue.RepoPrivate = private != 0

	issue.Assignees = splitMultiValue(assignees)
	issue.Labels = splitMultiValue(labels)
	issue.Involves = splitMultiValue(involves)
	issue.Mentions = splitMultiValue(mentions)
	issue.ReviewRequested = splitMultiValue(reviewRequested)
	issue.Reviews = splitMultiValue(reviews)
	issue.ProjectNames = splitMultiValue(projectNames)

	if issue.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return ir.Issue{}, fmt.Errorf("scan issue %s: %w", issue.Key(), err)
	}

	times := []struct {
		src    sql.NullString
		layout string
		dst    **time.Time
	}{
		{closedAt, timeLayout, &issue.ClosedAt},
		{mergedAt, timeLayout, &issue.MergedAt},
		{readAt, timeLayout, &issue.ReadAt},
		{archivedAt, timeLayout, &issue.ArchivedAt},
		{markedAt, timeLayout, &issue.MarkedAt},
		{dueOn, dateLayout, &issue.DueOn},
	}
	for _, tc := range times {
		if *tc.dst, err = parseNullTime(tc.src, tc.layout); err != nil {
			return ir.Issue{}, fmt.Errorf("scan issue %s: %w", issue.Key(), err)
		}
	}

	created, err := parseNullTime(createdAt, timeLayout)
	if err != nil {
		return ir.Issue{}, fmt.Errorf("scan issue %s: %w", issue.Key(), err)
	}
	if created != nil {
		issue.CreatedAt = *created
	}

	return issue, nil
}
