package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when no repository can be found at or above the working directory.
var ErrNotRepository = errors.New("not a git repository")

// GoGitRemotes lists remotes by reading the repository configuration in-process with go-git.
type GoGitRemotes struct {
	workingDir string
}

var _ RemoteLister = &GoGitRemotes{}

func NewGoGitRemotes(workingDir string) *GoGitRemotes {
	return &GoGitRemotes{workingDir: workingDir}
}

func (g *GoGitRemotes) ListRemotes(_ context.Context) ([]Remote, error) {
	// linked worktrees keep their remotes in the common directory's config
	repo, err := gogit.PlainOpenWithOptions(g.workingDir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	gitRemotes, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}

	remotes := make([]Remote, 0, len(gitRemotes))
	for _, r := range gitRemotes {
		cfg := r.Config()
		remote := Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			remote.FetchURL = cfg.URLs[0]
			remote.PushURL = cfg.URLs[len(cfg.URLs)-1]
		}
		remotes = append(remotes, remote)
	}

	// go-git returns remotes in map order
	sort.Slice(remotes, func(i, j int) bool {
		return remotes[i].Name < remotes[j].Name
	})

	return remotes, nil
}

// FallbackRemotes tries each lister in order, moving to the next when one fails for a
// reason other than the directory not being a repository, or finds no remotes. An empty
// list is returned only when no lister failed.
type FallbackRemotes []RemoteLister

func (f FallbackRemotes) ListRemotes(ctx context.Context) ([]Remote, error) {
	var lastErr error
	var empty []Remote
	for _, lister := range f {
		remotes, err := lister.ListRemotes(ctx)
		switch {
		case err == nil && len(remotes) > 0:
			return remotes, nil
		case err == nil:
			empty = []Remote{}
		case errors.Is(err, ErrNotRepository):
			return nil, err
		default:
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	if empty == nil {
		return nil, errors.New("no remote listers configured")
	}
	return empty, nil
}
