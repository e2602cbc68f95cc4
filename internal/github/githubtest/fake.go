// Package githubtest provides an in-memory github.GitHub for tests.
package githubtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmcampanini/pullgod/internal/github"
)

// Fake serves pull requests from memory and records every mutating call.
// Errors keyed by method name ("ListOpenPullRequests", "AddLabel", ...) are returned
// wrapped in a *github.ProviderError.
type Fake struct {
	Details      map[int]github.PullRequestDetail
	Diffs        map[int]string
	Errors       map[string]error
	Labels       map[string]github.Label
	PullRequests []github.PullRequest

	mu    sync.Mutex
	calls []string
}

var _ github.GitHub = &Fake{}

func New(prs ...github.PullRequest) *Fake {
	return &Fake{
		Details:      make(map[int]github.PullRequestDetail),
		Diffs:        make(map[int]string),
		Errors:       make(map[string]error),
		Labels:       make(map[string]github.Label),
		PullRequests: prs,
	}
}

func (f *Fake) fail(method string) error {
	if err, ok := f.Errors[method]; ok {
		return &github.ProviderError{Op: method, Err: err}
	}
	return nil
}

func (f *Fake) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded mutating calls, e.g. "AddLabel 3 priority:low".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) find(number int) (github.PullRequest, bool) {
	for _, pr := range f.PullRequests {
		if pr.Number == number {
			return pr, true
		}
	}
	return github.PullRequest{}, false
}

func (f *Fake) ListOpenPullRequests(_ context.Context, limit int) ([]github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ListOpenPullRequests"); err != nil {
		return nil, err
	}
	prs := append([]github.PullRequest(nil), f.PullRequests...)
	if limit > 0 && len(prs) > limit {
		prs = prs[:limit]
	}
	return prs, nil
}

func (f *Fake) GetPullRequest(_ context.Context, number int) (github.PullRequestDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetPullRequest"); err != nil {
		return github.PullRequestDetail{}, err
	}
	if d, ok := f.Details[number]; ok {
		return d, nil
	}
	if pr, ok := f.find(number); ok {
		return github.PullRequestDetail{PullRequest: pr, State: "OPEN"}, nil
	}
	return github.PullRequestDetail{}, &github.ProviderError{Op: "GetPullRequest", Err: errors.New("not found")}
}

func (f *Fake) GetPullRequestByBranch(_ context.Context, branch string) (*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetPullRequestByBranch"); err != nil {
		return nil, err
	}
	for _, pr := range f.PullRequests {
		if pr.HeadRefName == branch {
			pr := pr
			return &pr, nil
		}
	}
	return nil, nil
}

func (f *Fake) GetPullRequestDiff(_ context.Context, number int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("GetPullRequestDiff"); err != nil {
		return "", err
	}
	return f.Diffs[number], nil
}

func (f *Fake) OpenInBrowser(_ context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("OpenInBrowser"); err != nil {
		return err
	}
	f.record("OpenInBrowser %d", number)
	return nil
}

func (f *Fake) AddLabel(_ context.Context, number int, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("AddLabel"); err != nil {
		return err
	}
	f.record("AddLabel %d %s", number, label)
	for i := range f.PullRequests {
		if f.PullRequests[i].Number == number && !f.PullRequests[i].HasLabel(label) {
			f.PullRequests[i].Labels = append(f.PullRequests[i].Labels, label)
		}
	}
	return nil
}

func (f *Fake) RemoveLabel(_ context.Context, number int, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("RemoveLabel"); err != nil {
		return err
	}
	f.record("RemoveLabel %d %s", number, label)
	for i := range f.PullRequests {
		if f.PullRequests[i].Number != number {
			continue
		}
		var kept []string
		for _, l := range f.PullRequests[i].Labels {
			if l != label {
				kept = append(kept, l)
			}
		}
		f.PullRequests[i].Labels = kept
	}
	return nil
}

func (f *Fake) EnsureLabel(_ context.Context, label github.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("EnsureLabel"); err != nil {
		return err
	}
	if _, ok := f.Labels[label.Name]; ok {
		return nil
	}
	f.record("EnsureLabel %s", label.Name)
	f.Labels[label.Name] = label
	return nil
}

func (f *Fake) PostComment(_ context.Context, number int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("PostComment"); err != nil {
		return err
	}
	f.record("PostComment %d %s", number, body)
	return nil
}

func (f *Fake) ClosePullRequest(_ context.Context, number int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ClosePullRequest"); err != nil {
		return err
	}
	f.record("ClosePullRequest %d", number)
	return nil
}
