package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jmcampanini/pullgod/internal/checkout"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/pr"
	"github.com/jmcampanini/pullgod/internal/render"
)

// Overview is everything the list view shows, gathered in one pass.
type Overview struct {
	Behind        map[string]int
	Current       *github.PullRequest
	CurrentBranch string
	LowPriority   []github.PullRequest
	PullRequests  []github.PullRequest
}

// Overview fetches the pull request list, the current pull request, the current branch and
// the behind counts concurrently. Only a failure to list pull requests fails the call.
func (a *App) Overview(ctx context.Context) (Overview, error) {
	var (
		behind  map[string]int
		branch  string
		current *github.PullRequest
		prs     []github.PullRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prs, err = a.source.Refresh(gctx)
		return err
	})
	g.Go(func() error {
		current = a.source.GetCurrentPullRequest(gctx)
		return nil
	})
	g.Go(func() error {
		b, err := a.git.GetCurrentBranch(gctx)
		if err != nil {
			a.log.Debug("Failed to read current branch", "error", err)
			return nil
		}
		branch = b
		return nil
	})
	g.Go(func() error {
		counts, err := a.source.GetBranchBehindCounts(gctx)
		if err != nil {
			a.log.Debug("Failed to read behind counts", "error", err)
			counts = map[string]int{}
		}
		behind = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	return a.overviewOf(prs, current, branch, behind), nil
}

func (a *App) overviewOf(prs []github.PullRequest, current *github.PullRequest, branch string, behind map[string]int) Overview {
	if current == nil && branch != "HEAD" {
		current = pr.FindForBranch(prs, branch)
	}
	regular, low := a.source.SplitByPriority(prs)
	return Overview{
		Behind:        behind,
		Current:       current,
		CurrentBranch: branch,
		LowPriority:   low,
		PullRequests:  regular,
	}
}

// localState reads the current branch and behind counts. Failures leave them empty.
func (a *App) localState(ctx context.Context) (string, map[string]int) {
	branch, err := a.git.GetCurrentBranch(ctx)
	if err != nil {
		a.log.Debug("Failed to read current branch", "error", err)
	}
	behind, err := a.source.GetBranchBehindCounts(ctx)
	if err != nil {
		a.log.Debug("Failed to read behind counts", "error", err)
		behind = map[string]int{}
	}
	return branch, behind
}

// CachedOverview builds an Overview from the cache without contacting GitHub.
// Returns ok=false when nothing is cached.
func (a *App) CachedOverview(ctx context.Context) (Overview, bool) {
	prs := a.source.Cached()
	if prs == nil {
		return Overview{}, false
	}
	branch, behind := a.localState(ctx)
	return a.overviewOf(prs, nil, branch, behind), true
}

// OverviewFunc displays an Overview. stale is true when it was built from the cache.
type OverviewFunc func(ov Overview, stale bool)

// Revalidate renders the cached overview right away, then refreshes the pull request list
// and renders again. When the refresh fails after a stale render, the error is returned and
// the stale render stands.
func (a *App) Revalidate(ctx context.Context, render OverviewFunc) error {
	branch, behind := a.localState(ctx)
	return a.source.Revalidate(ctx, func(prs []github.PullRequest, stale bool) {
		render(a.overviewOf(prs, nil, branch, behind), stale)
	})
}

// Current returns the open pull request for the current branch, or ErrNoCurrentPR.
func (a *App) Current(ctx context.Context) (github.PullRequest, error) {
	current := a.source.GetCurrentPullRequest(ctx)
	if current == nil {
		return github.PullRequest{}, ErrNoCurrentPR
	}
	return *current, nil
}

// ResolveNumber returns number when it is set, otherwise the number of the current
// branch's pull request.
func (a *App) ResolveNumber(ctx context.Context, number int) (int, error) {
	if number > 0 {
		return number, nil
	}
	current, err := a.Current(ctx)
	if err != nil {
		return 0, err
	}
	return current.Number, nil
}

// BehindCounts maps local branches to how far they are behind their upstream.
func (a *App) BehindCounts(ctx context.Context) (map[string]int, error) {
	return a.source.GetBranchBehindCounts(ctx)
}

// LocalPullRequests returns the open pull requests that have a local branch, in list
// order. The cached list is used when there is one.
func (a *App) LocalPullRequests(ctx context.Context) ([]pr.BranchMatch, error) {
	prs := a.source.Cached()
	if prs == nil {
		var err error
		if prs, err = a.source.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	branches, err := a.git.ListLocalBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read branches: %w", err)
	}

	var local []pr.BranchMatch
	for _, m := range pr.Match(prs, branches) {
		if m.HasLocalBranch {
			local = append(local, m)
		}
	}
	return local, nil
}

// findPullRequest looks in the cached list first and falls back to GitHub.
func (a *App) findPullRequest(ctx context.Context, number int) (github.PullRequest, error) {
	for _, p := range a.source.Cached() {
		if p.Number == number {
			return p, nil
		}
	}
	detail, err := a.github.GetPullRequest(ctx, number)
	if err != nil {
		return github.PullRequest{}, err
	}
	return detail.PullRequest, nil
}

// Checkout brings the working copy onto the pull request's head branch and records the
// checkout time used for ordering.
func (a *App) Checkout(ctx context.Context, number int) (checkout.Result, error) {
	target, err := a.findPullRequest(ctx, number)
	if err != nil {
		return checkout.Result{}, err
	}

	result, err := a.reconciler.Checkout(ctx, target)
	if err != nil {
		return result, err
	}

	if err := a.cache.SetLastCheckedOut(number, a.now().UnixMilli()); err != nil {
		a.log.Warn("Failed to record checkout time", "number", number, "error", err)
	}
	return result, nil
}

func (a *App) Browse(ctx context.Context, number int) error {
	return a.github.OpenInBrowser(ctx, number)
}

func (a *App) View(ctx context.Context, number int) (github.PullRequestDetail, error) {
	return a.github.GetPullRequest(ctx, number)
}

func (a *App) Diff(ctx context.Context, number int) (string, error) {
	return a.github.GetPullRequestDiff(ctx, number)
}

// DiffStat returns the per-file line counts of the pull request's diff.
func (a *App) DiffStat(ctx context.Context, number int) ([]render.FileStat, error) {
	diff, err := a.Diff(ctx, number)
	if err != nil {
		return nil, err
	}
	return render.ParseDiffStat(diff)
}

// Summary renders a markdown document with the pull request's title, body and diff.
func (a *App) Summary(ctx context.Context, number int) (string, error) {
	var (
		detail github.PullRequestDetail
		diff   string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = a.github.GetPullRequest(gctx, number)
		return err
	})
	g.Go(func() error {
		var err error
		diff, err = a.github.GetPullRequestDiff(gctx, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	return render.SummaryMarkdown(detail, diff), nil
}

func (a *App) Comment(ctx context.Context, number int, body string) error {
	if body == "" {
		return errors.New("comment body cannot be empty")
	}
	return a.github.PostComment(ctx, number, body)
}

func (a *App) Close(ctx context.Context, number int) error {
	return a.github.ClosePullRequest(ctx, number)
}
