package git

import "context"

type LocalBranch struct {
	Ahead        int // Commits ahead of upstream
	Behind       int // Commits behind upstream
	IsCheckedOut bool
	Name         string // Short branch name (e.g., "main", not "refs/heads/main")
	UpstreamGone bool   // Upstream is configured but the remote branch no longer exists
	UpstreamName string // Short upstream name (e.g., "origin/main"), empty if no upstream
}

func NewLocalBranch(name, upstreamName string, isCheckedOut, upstreamGone bool, ahead, behind int) LocalBranch {
	return LocalBranch{
		Ahead:        ahead,
		Behind:       behind,
		IsCheckedOut: isCheckedOut,
		Name:         name,
		UpstreamGone: upstreamGone,
		UpstreamName: upstreamName,
	}
}

// HasUpstream reports whether the branch tracks a remote branch that still exists.
func (b LocalBranch) HasUpstream() bool {
	return b.UpstreamName != "" && !b.UpstreamGone
}

// UpstreamRemote returns the remote part of the upstream (e.g., "origin" for "origin/main").
func (b LocalBranch) UpstreamRemote() string {
	remote, _ := splitUpstream(b.UpstreamName)
	return remote
}

// UpstreamBranch returns the branch part of the upstream (e.g., "feature/x" for "origin/feature/x").
func (b LocalBranch) UpstreamBranch() string {
	_, branch := splitUpstream(b.UpstreamName)
	return branch
}

type Remote struct {
	FetchURL string
	Name     string
	PushURL  string
}

// RemoteLister lists the configured remotes of a repository.
type RemoteLister interface {
	ListRemotes(ctx context.Context) ([]Remote, error)
}

type Git interface {
	RemoteLister

	// IsInsideWorkTree reports whether the working directory is inside a git work tree.
	// Returns (false, nil) outside a repository; errors only when git itself fails.
	IsInsideWorkTree(ctx context.Context) (bool, error)

	// GetCurrentBranch returns the current branch name.
	// Returns "HEAD" if in detached HEAD state.
	GetCurrentBranch(ctx context.Context) (string, error)

	// GetMainWorktreePath returns the absolute path to the main (primary) worktree.
	GetMainWorktreePath(ctx context.Context) (string, error)

	// GetWorktreeRoot returns the absolute path to the root of the git tree.
	// If not in a git repository, returns ("", nil).
	GetWorktreeRoot(ctx context.Context) (string, error)

	// ListLocalBranches returns all local branches with their upstream tracking state.
	ListLocalBranches(ctx context.Context) ([]LocalBranch, error)

	// GetLocalBranch returns the named local branch, or nil if it does not exist.
	GetLocalBranch(ctx context.Context, name string) (*LocalBranch, error)

	// HasUnpushedCommits reports whether `git log upstream..branch` is non-empty.
	HasUnpushedCommits(ctx context.Context, upstream, branch string) (bool, error)

	// HasUncommittedChanges reports whether the working tree or index has changes.
	HasUncommittedChanges(ctx context.Context) (bool, error)

	// RemoteExists checks if a remote with the given name is configured.
	RemoteExists(ctx context.Context, name string) (bool, error)

	// AddRemote adds a new remote. Will mutate the current git state.
	AddRemote(ctx context.Context, name, url string) error

	// Fetch fetches from the named remote. Will mutate the current git state.
	Fetch(ctx context.Context, remote string) error

	// Checkout switches to an existing local branch. Will mutate the current git state.
	Checkout(ctx context.Context, branch string) error

	// CheckoutNewTracking creates branch from startPoint (e.g., "origin/feature") and switches to it.
	// Will mutate the current git state.
	CheckoutNewTracking(ctx context.Context, branch, startPoint string) error

	// Pull pulls branch from remote into the current branch.
	// With ffOnly, the pull refuses anything other than a fast-forward.
	// Will mutate the current git state.
	Pull(ctx context.Context, remote, branch string, ffOnly bool) error
}
