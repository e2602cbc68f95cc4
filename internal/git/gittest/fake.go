// Package gittest provides an in-memory git.Git for tests.
package gittest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jmcampanini/pullgod/internal/git"
)

// Fake models a repository's branches, remotes and working tree.
// Mutating methods record a git-like command line in Calls and update the model.
// Errors keyed by method name ("Fetch", "Checkout", ...) make that method fail.
type Fake struct {
	Branches      []git.LocalBranch
	CurrentBranch string
	Dirty         bool
	Errors        map[string]error
	Remotes       []git.Remote
	// Unpushed is keyed by "upstream..branch".
	Unpushed     map[string]bool
	WorktreeRoot string

	mu    sync.Mutex
	calls []string
}

var _ git.Git = &Fake{}

func New() *Fake {
	return &Fake{
		CurrentBranch: "main",
		Errors:        make(map[string]error),
		Unpushed:      make(map[string]bool),
		WorktreeRoot:  "/work",
	}
}

// WithBranch adds a local branch.
func (f *Fake) WithBranch(b git.LocalBranch) *Fake {
	f.Branches = append(f.Branches, b)
	return f
}

// WithRemote adds a remote.
func (f *Fake) WithRemote(name, url string) *Fake {
	f.Remotes = append(f.Remotes, git.Remote{Name: name, FetchURL: url, PushURL: url})
	return f
}

// Calls returns the recorded mutating commands, e.g. "fetch origin".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) err(method string) error {
	return f.Errors[method]
}

func (f *Fake) mutate(method string, format string, args ...interface{}) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.err(method)
}

func (f *Fake) ListRemotes(_ context.Context) ([]git.Remote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("ListRemotes"); err != nil {
		return nil, err
	}
	return append([]git.Remote(nil), f.Remotes...), nil
}

func (f *Fake) IsInsideWorkTree(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.WorktreeRoot != "", f.err("IsInsideWorkTree")
}

func (f *Fake) GetCurrentBranch(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GetCurrentBranch"); err != nil {
		return "", err
	}
	return f.CurrentBranch, nil
}

func (f *Fake) GetMainWorktreePath(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.WorktreeRoot, f.err("GetMainWorktreePath")
}

func (f *Fake) GetWorktreeRoot(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.WorktreeRoot, f.err("GetWorktreeRoot")
}

func (f *Fake) ListLocalBranches(_ context.Context) ([]git.LocalBranch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("ListLocalBranches"); err != nil {
		return nil, err
	}
	branches := append([]git.LocalBranch(nil), f.Branches...)
	for i := range branches {
		branches[i].IsCheckedOut = branches[i].Name == f.CurrentBranch
	}
	return branches, nil
}

func (f *Fake) GetLocalBranch(ctx context.Context, name string) (*git.LocalBranch, error) {
	branches, err := f.ListLocalBranches(ctx)
	if err != nil {
		return nil, err
	}
	for i := range branches {
		if branches[i].Name == name {
			return &branches[i], nil
		}
	}
	return nil, nil
}

func (f *Fake) HasUnpushedCommits(_ context.Context, upstream, branch string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("HasUnpushedCommits"); err != nil {
		return false, err
	}
	return f.Unpushed[upstream+".."+branch], nil
}

func (f *Fake) HasUncommittedChanges(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("HasUncommittedChanges"); err != nil {
		return false, err
	}
	return f.Dirty, nil
}

func (f *Fake) RemoteExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("RemoteExists"); err != nil {
		return false, err
	}
	for _, r := range f.Remotes {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) AddRemote(_ context.Context, name, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("AddRemote", "remote add %s %s", name, url); err != nil {
		return err
	}
	f.Remotes = append(f.Remotes, git.Remote{Name: name, FetchURL: url, PushURL: url})
	return nil
}

func (f *Fake) Fetch(_ context.Context, remote string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutate("Fetch", "fetch %s", remote)
}

func (f *Fake) Checkout(_ context.Context, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("Checkout", "checkout %s", branch); err != nil {
		return err
	}
	f.CurrentBranch = branch
	return nil
}

func (f *Fake) CheckoutNewTracking(_ context.Context, branch, startPoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutate("CheckoutNewTracking", "checkout -b %s %s", branch, startPoint); err != nil {
		return err
	}
	f.Branches = append(f.Branches, git.NewLocalBranch(branch, startPoint, false, false, 0, 0))
	f.CurrentBranch = branch
	return nil
}

func (f *Fake) Pull(_ context.Context, remote, branch string, ffOnly bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	args := []string{"pull"}
	if ffOnly {
		args = append(args, "--ff-only")
	}
	args = append(args, remote, branch)
	if err := f.mutate("Pull", "%s", strings.Join(args, " ")); err != nil {
		return err
	}
	for i := range f.Branches {
		if f.Branches[i].Name == f.CurrentBranch {
			f.Branches[i].Behind = 0
		}
	}
	return nil
}
