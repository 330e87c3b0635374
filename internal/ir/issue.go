package ir

import (
	"fmt"
	"strings"
	"time"
)

// IssueType distinguishes issues from pull requests.
type IssueType string

const (
	TypeIssue       IssueType = "issue"
	TypePullRequest IssueType = "pr"
)

// Issue is one locally mirrored GitHub issue or pull request.
//
// Repo is "owner/name" and User is the owner half. Times are UTC; a nil
// pointer means "never" (not closed, not read, no due date).
type Issue struct {
	Repo        string    `json:"repo" yaml:"repo"`
	User        string    `json:"user" yaml:"user"`
	Number      int64     `json:"number" yaml:"number"`
	Type        IssueType `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title"`
	Body        string    `json:"body,omitempty" yaml:"body"`
	Author      string    `json:"author" yaml:"author"`
	Milestone   string    `json:"milestone,omitempty" yaml:"milestone"`
	Draft       bool      `json:"draft,omitempty" yaml:"draft"`
	RepoPrivate bool      `json:"repo_private,omitempty" yaml:"repo_private"`

	Assignees       []string `json:"assignees,omitempty" yaml:"assignees"`
	Labels          []string `json:"labels,omitempty" yaml:"labels"`
	Involves        []string `json:"involves,omitempty" yaml:"involves"`
	Mentions        []string `json:"mentions,omitempty" yaml:"mentions"`
	ReviewRequested []string `json:"review_requested,omitempty" yaml:"review_requested"`
	Reviews         []string `json:"reviews,omitempty" yaml:"reviews"`
	ProjectNames    []string `json:"project_names,omitempty" yaml:"project_names"`

	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty" yaml:"closed_at"`
	MergedAt   *time.Time `json:"merged_at,omitempty" yaml:"merged_at"`
	ReadAt     *time.Time `json:"read_at,omitempty" yaml:"read_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" yaml:"archived_at"`
	MarkedAt   *time.Time `json:"marked_at,omitempty" yaml:"marked_at"`
	DueOn      *time.Time `json:"due_on,omitempty" yaml:"due_on"`
}

// Key identifies an issue within the mirror: "owner/name#number".
func (i Issue) Key() string {
	return fmt.Sprintf("%s#%d", i.Repo, i.Number)
}

// Normalize fills derived fields. User defaults to the owner half of Repo
// and Type defaults to TypeIssue.
func (i *Issue) Normalize() {
	if i.User == "" {
		if owner, _, ok := strings.Cut(i.Repo, "/"); ok {
			i.User = owner
		}
	}
	if i.Type == "" {
		i.Type = TypeIssue
	}
}

// Validate checks the fields the store requires.
func (i Issue) Validate() error {
	if i.Repo == "" {
		return fmt.Errorf("issue: repo is required")
	}
	if !strings.Contains(i.Repo, "/") {
		return fmt.Errorf("issue %s: repo must be owner/name", i.Key())
	}
	if i.Number <= 0 {
		return fmt.Errorf("issue %s: number must be positive", i.Key())
	}
	switch i.Type {
	case TypeIssue, TypePullRequest:
	default:
		return fmt.Errorf("issue %s: unknown type %q", i.Key(), i.Type)
	}
	if i.Type == TypeIssue && (i.Draft || i.MergedAt != nil) {
		return fmt.Errorf("issue %s: draft and merged apply to pull requests only", i.Key())
	}
	if i.UpdatedAt.IsZero() {
		return fmt.Errorf("issue %s: updated_at is required", i.Key())
	}
	return nil
}
