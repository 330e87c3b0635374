package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/hubstream/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// at returns a pointer to a UTC time on 2024-03-<day> at <hour>:00.
func at(day, hour int) *time.Time {
	t := time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
	return &t
}

// createTestIssue creates an open issue with minimal required fields.
func createTestIssue(repo string, number int64) ir.Issue {
	return ir.Issue{
		Repo:      repo,
		Number:    number,
		Type:      ir.TypeIssue,
		Title:     "issue",
		Author:    "alice",
		CreatedAt: *at(1, 9),
		UpdatedAt: *at(int(number%28)+1, 10),
	}
}

// fixtureIssues is a small mirror covering every flag column.
func fixtureIssues() []ir.Issue {
	bug := createTestIssue("acme/widget", 1)
	bug.Title = "Crash on start"
	bug.Body = "stack trace attached"
	bug.Labels = []string{"bug", "p1"}
	bug.Assignees = []string{"alice"}
	bug.Milestone = "v1.0"
	bug.DueOn = at(20, 0)
	bug.UpdatedAt = *at(10, 12)

	feature := createTestIssue("acme/widget", 2)
	feature.Title = "Add dark mode"
	feature.Author = "Bob"
	feature.Labels = []string{"enhancement"}
	feature.Assignees = []string{"bob", "carol"}
	feature.ClosedAt = at(9, 8)
	feature.UpdatedAt = *at(9, 8)

	pr := createTestIssue("acme/gadget", 3)
	pr.Type = ir.TypePullRequest
	pr.Title = "Fix crash"
	pr.Author = "carol"
	pr.Draft = true
	pr.ReviewRequested = []string{"alice"}
	pr.Mentions = []string{"acme/core"}
	pr.UpdatedAt = *at(11, 15)
	pr.ReadAt = at(12, 0)

	merged := createTestIssue("other/lib", 4)
	merged.Type = ir.TypePullRequest
	merged.Title = "Bump deps"
	merged.Author = "dependabot"
	merged.Reviews = []string{"bob"}
	merged.ClosedAt = at(5, 0)
	merged.MergedAt = at(5, 0)
	merged.RepoPrivate = true
	merged.UpdatedAt = *at(5, 0)

	return []ir.Issue{bug, feature, pr, merged}
}
