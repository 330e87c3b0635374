package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/hubstream/internal/ir"
)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpsertStats counts the outcome of a batch upsert.
type UpsertStats struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// UpsertIssue inserts or replaces an issue keyed by repo and number.
// Returns false when a row with the same content hash already exists, in
// which case nothing is written.
//
// The issue is normalized (user and type defaults) and validated first.
// Local state (read_at, archived_at, marked_at) is taken from the issue
// as given, so importers that only carry GitHub fields should leave those
// nil to avoid clearing it; see SetState.
func (s *Store) UpsertIssue(ctx context.Context, issue ir.Issue) (bool, error) {
	_, changed, err := upsertIssue(ctx, s.db, issue)
	return changed, err
}

// UpsertIssues upserts a batch in one transaction. Any invalid issue
// aborts the whole batch.
func (s *Store) UpsertIssues(ctx context.Context, issues []ir.Issue) (UpsertStats, error) {
	var stats UpsertStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("upsert issues: begin: %w", err)
	}
	defer tx.Rollback()

	for _, issue := range issues {
		existed, changed, err := upsertIssue(ctx, tx, issue)
		if err != nil {
			return UpsertStats{}, err
		}
		switch {
		case !changed:
			stats.Unchanged++
		case existed:
			stats.Updated++
		default:
			stats.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("upsert issues: commit: %w", err)
	}

	slog.Debug("issues upserted",
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
	)
	return stats, nil
}

func upsertIssue(ctx context.Context, db dbtx, issue ir.Issue) (existed, changed bool, err error) {
	issue.Normalize()
	if err := issue.Validate(); err != nil {
		return false, false, fmt.Errorf("upsert issue: %w", err)
	}

	hash, err := ir.IssueHash(issue)
	if err != nil {
		return false, false, fmt.Errorf("upsert issue %s: %w", issue.Key(), err)
	}

	var current string
	err = db.QueryRowContext(ctx, `SELECT content_hash FROM issues WHERE issue_key = ?`, issue.Key()).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return false, false, fmt.Errorf("upsert issue %s: %w", issue.Key(), err)
	default:
		existed = true
		if current == hash {
			return true, false, nil
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO issues
		(issue_key, repo, user, number, type, title, body, author, milestone, draft, repo_private,
		 assignees, labels, involves, mentions, review_requested, reviews, project_names,
		 created_at, updated_at, closed_at, merged_at, read_at, archived_at, marked_at, due_on,
		 content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(issue_key) DO UPDATE SET
			repo = excluded.repo,
			user = excluded.user,
			type = excluded.type,
			title = excluded.title,
			body = excluded.body,
			author = excluded.author,
			milestone = excluded.milestone,
			draft = excluded.draft,
			repo_private = excluded.repo_private,
			assignees = excluded.assignees,
			labels = excluded.labels,
			involves = excluded.involves,
			mentions = excluded.mentions,
			review_requested = excluded.review_requested,
			reviews = excluded.reviews,
			project_names = excluded.project_names,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			closed_at = excluded.closed_at,
			merged_at = excluded.merged_at,
			read_at = excluded.read_at,
			archived_at = excluded.archived_at,
			marked_at = excluded.marked_at,
			due_on = excluded.due_on,
			content_hash = excluded.content_hash
	`,
		issue.Key(),
		issue.Repo,
		issue.User,
		issue.Number,
		string(issue.Type),
		issue.Title,
		nullString(issue.Body),
		nullString(issue.Author),
		nullString(issue.Milestone),
		boolInt(issue.Draft),
		boolInt(issue.RepoPrivate),
		multiValue(issue.Assignees),
		multiValue(issue.Labels),
		multiValue(issue.Involves),
		multiValue(issue.Mentions),
		multiValue(issue.ReviewRequested),
		multiValue(issue.Reviews),
		multiValue(issue.ProjectNames),
		nullTime(timePtr(issue.CreatedAt)),
		formatTime(issue.UpdatedAt),
		nullTime(issue.ClosedAt),
		nullTime(issue.MergedAt),
		nullTime(issue.ReadAt),
		nullTime(issue.ArchivedAt),
		nullTime(issue.MarkedAt),
		nullDate(issue.DueOn),
		hash,
	)
	if err != nil {
		return existed, false, fmt.Errorf("upsert issue %s: %w", issue.Key(), err)
	}

	return existed, true, nil
}

// State names a locally tracked timestamp column.
type State string

const (
	StateRead     State = "read"
	StateArchived State = "archived"
	StateBookmark State = "bookmark"
)

var stateColumns = map[State]string{
	StateRead:     "read_at",
	StateArchived: "archived_at",
	StateBookmark: "marked_at",
}

// SetState sets (at != nil) or clears (at == nil) a local state timestamp
// on one issue. Returns sql.ErrNoRows if the issue does not exist.
//
// The content hash is cleared so the next upsert of the same issue
// rewrites the row.
func (s *Store) SetState(ctx context.Context, key string, state State, at *time.Time) error {
	column, ok := stateColumns[state]
	if !ok {
		return fmt.Errorf("set state: unknown state %q", state)
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE issues SET %s = ?, content_hash = '' WHERE issue_key = ?`, column),
		nullTime(at), key,
	)
	if err != nil {
		return fmt.Errorf("set state %s on %s: %w", state, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set state %s on %s: %w", state, key, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteIssue removes one issue. Deleting a missing issue is not an error.
func (s *Store) DeleteIssue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE issue_key = ?`, key); err != nil {
		return fmt.Errorf("delete issue %s: %w", key, err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
