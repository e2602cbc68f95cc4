// Package pr lists, orders and caches the pull requests of the current repository.
package pr

import (
	"cmp"
	"context"
	"slices"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/github"
)

// Cache is the subset of the disk cache used by Source.
type Cache interface {
	Get(key string) []github.PullRequest
	Set(key string, prs []github.PullRequest) error
	GetLastCheckedOut(number int) int64
}

// BranchReader is the subset of git used by Source.
type BranchReader interface {
	GetCurrentBranch(ctx context.Context) (string, error)
	ListLocalBranches(ctx context.Context) ([]git.LocalBranch, error)
}

type Options struct {
	CacheKey         string
	Limit            int
	LowPriorityLabel string
}

type Source struct {
	cache  Cache
	git    BranchReader
	github github.GitHub
	log    *clog.Logger
	opts   Options
}

func NewSource(gh github.GitHub, g BranchReader, c Cache, opts Options) *Source {
	if opts.Limit <= 0 {
		opts.Limit = github.DefaultPRLimit
	}
	return &Source{
		cache:  c,
		git:    g,
		github: gh,
		log:    clog.Default().WithPrefix("pr"),
		opts:   opts,
	}
}

// ListOpenPullRequests fetches open pull requests and returns them in priority order.
func (s *Source) ListOpenPullRequests(ctx context.Context) ([]github.PullRequest, error) {
	prs, err := s.github.ListOpenPullRequests(ctx, s.opts.Limit)
	if err != nil {
		return nil, err
	}
	s.Sort(prs)
	return prs, nil
}

// Refresh fetches open pull requests and stores them in the cache.
// A cache write failure is logged and does not fail the refresh.
func (s *Source) Refresh(ctx context.Context) ([]github.PullRequest, error) {
	prs, err := s.ListOpenPullRequests(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(s.opts.CacheKey, prs); err != nil {
		s.log.Debug("Failed to cache pull requests", "error", err)
	}
	return prs, nil
}

// Cached returns the cached pull requests in priority order, or nil if nothing is cached.
func (s *Source) Cached() []github.PullRequest {
	prs := s.cache.Get(s.opts.CacheKey)
	if prs == nil {
		return nil
	}
	s.Sort(prs)
	return prs
}

// Sort orders prs in place: pull requests without the low priority label first, then most
// recently checked out, then most recently created, then highest number.
func (s *Source) Sort(prs []github.PullRequest) {
	slices.SortStableFunc(prs, s.compare)
}

func (s *Source) compare(a, b github.PullRequest) int {
	aLow, bLow := s.IsLowPriority(a), s.IsLowPriority(b)
	if aLow != bLow {
		if aLow {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(s.cache.GetLastCheckedOut(b.Number), s.cache.GetLastCheckedOut(a.Number)); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.Number, a.Number)
}

func (s *Source) IsLowPriority(pr github.PullRequest) bool {
	return pr.HasLabel(s.opts.LowPriorityLabel)
}

// GetCurrentPullRequest returns the open pull request for the current branch.
// Any failure along the way is treated as "no pull request".
func (s *Source) GetCurrentPullRequest(ctx context.Context) *github.PullRequest {
	branch, err := s.git.GetCurrentBranch(ctx)
	if err != nil {
		s.log.Debug("No current branch", "error", err)
		return nil
	}
	if branch == "" || branch == "HEAD" {
		return nil
	}

	pr, err := s.github.GetPullRequestByBranch(ctx, branch)
	if err != nil {
		s.log.Debug("Failed to look up pull request for branch", "branch", branch, "error", err)
		return nil
	}
	return pr
}

// GetBranchBehindCounts maps local branch names to the number of commits they are behind
// their upstream. Branches that are not behind are absent.
func (s *Source) GetBranchBehindCounts(ctx context.Context) (map[string]int, error) {
	branches, err := s.git.ListLocalBranches(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, b := range branches {
		if b.Behind > 0 {
			counts[b.Name] = b.Behind
		}
	}
	return counts, nil
}

// RenderFunc displays a list of pull requests. stale is true for cached data.
type RenderFunc func(prs []github.PullRequest, stale bool)

// Revalidate renders cached data right away, then fetches fresh data, caches it and renders
// it again. When the fetch fails the stale render stands and the error is returned.
func (s *Source) Revalidate(ctx context.Context, render RenderFunc) error {
	if cached := s.Cached(); cached != nil {
		render(cached, true)
	}

	fresh, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	render(fresh, false)
	return nil
}
