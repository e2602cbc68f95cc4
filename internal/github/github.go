package github

import (
	"context"
	"fmt"
)

// DefaultPRLimit is the maximum number of pull requests returned by ListOpenPullRequests.
const DefaultPRLimit = 100

type GitHub interface {
	// ListOpenPullRequests returns up to limit open pull requests, most recently updated first.
	ListOpenPullRequests(ctx context.Context, limit int) ([]PullRequest, error)

	// GetPullRequest returns the details of a single pull request by number.
	GetPullRequest(ctx context.Context, number int) (PullRequestDetail, error)

	// GetPullRequestByBranch returns the open pull request whose head branch is branch,
	// or nil if there is none.
	GetPullRequestByBranch(ctx context.Context, branch string) (*PullRequest, error)

	// GetPullRequestDiff returns the unified diff of a pull request.
	GetPullRequestDiff(ctx context.Context, number int) (string, error)

	// OpenInBrowser opens the pull request page in the user's browser.
	OpenInBrowser(ctx context.Context, number int) error

	AddLabel(ctx context.Context, number int, label string) error
	RemoveLabel(ctx context.Context, number int, label string) error

	// EnsureLabel creates the label in the repository if it does not already exist.
	EnsureLabel(ctx context.Context, label Label) error

	PostComment(ctx context.Context, number int, body string) error
	ClosePullRequest(ctx context.Context, number int) error
}

// ProviderError reports a failed call to the pull request provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("github: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerError(op string, err error) error {
	return &ProviderError{Op: op, Err: err}
}
