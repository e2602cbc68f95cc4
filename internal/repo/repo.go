// Package repo resolves the GitHub owner and repository name of the working copy.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/git"
)

var (
	ErrNotRepository  = errors.New("not a git repository")
	ErrNoGitHubRemote = errors.New("no GitHub remote")
)

// RepositoryError reports that the working directory cannot be mapped to a GitHub repository.
type RepositoryError struct {
	Dir string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dir, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

type OwnerRepo struct {
	Owner string
	Name  string
}

func (o OwnerRepo) String() string {
	return o.Owner + "/" + o.Name
}

// WorkTreeChecker reports whether the working directory is inside a git work tree.
type WorkTreeChecker interface {
	IsInsideWorkTree(ctx context.Context) (bool, error)
}

type Locator struct {
	dir     string
	host    string
	log     *clog.Logger
	remotes git.RemoteLister
	tree    WorkTreeChecker
}

func NewLocator(dir, host string, tree WorkTreeChecker, remotes git.RemoteLister) *Locator {
	return &Locator{
		dir:     dir,
		host:    host,
		log:     clog.Default().WithPrefix("repo"),
		remotes: remotes,
		tree:    tree,
	}
}

// ResolveOwnerRepo finds the GitHub remote of the working copy, preferring origin.
func (l *Locator) ResolveOwnerRepo(ctx context.Context) (OwnerRepo, error) {
	inside, err := l.tree.IsInsideWorkTree(ctx)
	if err != nil {
		return OwnerRepo{}, fmt.Errorf("failed to inspect working directory: %w", err)
	}
	if !inside {
		return OwnerRepo{}, &RepositoryError{Dir: l.dir, Err: ErrNotRepository}
	}

	remotes, err := l.remotes.ListRemotes(ctx)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return OwnerRepo{}, &RepositoryError{Dir: l.dir, Err: ErrNotRepository}
		}
		return OwnerRepo{}, fmt.Errorf("failed to list remotes: %w", err)
	}

	remote, ok := l.pickRemote(remotes)
	if !ok {
		return OwnerRepo{}, &RepositoryError{Dir: l.dir, Err: ErrNoGitHubRemote}
	}

	ownerRepo, err := ParseOwnerRepo(remote.FetchURL, l.host)
	if err != nil {
		return OwnerRepo{}, &RepositoryError{Dir: l.dir, Err: err}
	}

	l.log.Debug("Resolved repository", "remote", remote.Name, "repo", ownerRepo)
	return ownerRepo, nil
}

func (l *Locator) pickRemote(remotes []git.Remote) (git.Remote, bool) {
	for _, r := range remotes {
		if r.Name == "origin" && strings.Contains(r.FetchURL, l.host) {
			return r, true
		}
	}
	for _, r := range remotes {
		if strings.Contains(r.FetchURL, l.host) {
			return r, true
		}
	}
	return git.Remote{}, false
}

// ParseOwnerRepo extracts owner and repository name from a remote URL on host.
// Accepted forms:
//
//	https://host/owner/repo(.git)
//	ssh://git@host/owner/repo(.git)
//	user@host:owner/repo(.git)
//
// Host names compare case-insensitively.
func ParseOwnerRepo(remoteURL, host string) (OwnerRepo, error) {
	u := strings.TrimSpace(remoteURL)

	var h, path string
	if _, rest, ok := strings.Cut(u, "://"); ok {
		// drop userinfo such as git@ or token@
		if at := strings.Index(rest, "@"); at != -1 && at < strings.Index(rest+"/", "/") {
			rest = rest[at+1:]
		}
		if h, path, ok = strings.Cut(rest, "/"); !ok {
			return OwnerRepo{}, fmt.Errorf("remote URL %q is not on %s", remoteURL, host)
		}
		h = stripPort(h)
	} else {
		// scp-like syntax: no slash may come before the first colon
		colon := strings.Index(u, ":")
		if colon == -1 || strings.Contains(u[:colon], "/") {
			return OwnerRepo{}, fmt.Errorf("unsupported remote URL %q", remoteURL)
		}
		h, path = u[:colon], u[colon+1:]
		if at := strings.LastIndex(h, "@"); at != -1 {
			h = h[at+1:]
		}
	}
	if !strings.EqualFold(h, host) {
		return OwnerRepo{}, fmt.Errorf("remote URL %q is not on %s", remoteURL, host)
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")

	owner, name, ok := strings.Cut(path, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return OwnerRepo{}, fmt.Errorf("cannot find owner/repo in remote URL %q", remoteURL)
	}

	return OwnerRepo{Owner: owner, Name: name}, nil
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
