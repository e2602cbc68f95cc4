package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/pullgod/internal/cache"
	"github.com/jmcampanini/pullgod/internal/checkout"
	"github.com/jmcampanini/pullgod/internal/config"
	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/git/gittest"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/github/githubtest"
	"github.com/jmcampanini/pullgod/internal/repo"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	*App
	cache  *cache.Cache
	gh     *githubtest.Fake
	git    *gittest.Fake
	sleeps []time.Duration
}

func newTestApp(t *testing.T, g *gittest.Fake, gh *githubtest.Fake) *testApp {
	t.Helper()
	c := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	a := New(config.DefaultConfig(), g, gh, c, repo.OwnerRepo{Owner: "acme", Name: "api"})
	a.log = clog.New(io.Discard)
	a.now = func() time.Time { return fixedNow }

	ta := &testApp{App: a, cache: c, gh: gh, git: g}
	a.sleep = func(d time.Duration) { ta.sleeps = append(ta.sleeps, d) }
	return ta
}

func newPR(number int, branch string, labels ...string) github.PullRequest {
	p := github.NewPullRequest(number, "PR "+branch, "octocat", branch)
	p.CreatedAt = fixedNow.Add(-time.Duration(number) * time.Hour)
	p.Labels = labels
	return p
}

func numbersOf(prs []github.PullRequest) []int {
	out := make([]int, len(prs))
	for i, p := range prs {
		out[i] = p.Number
	}
	return out
}

func TestOverview(t *testing.T) {
	g := gittest.New().
		WithBranch(git.NewLocalBranch("main", "origin/main", true, false, 0, 0)).
		WithBranch(git.NewLocalBranch("feature/a", "origin/feature/a", false, false, 0, 3))
	gh := githubtest.New(
		newPR(1, "feature/a"),
		newPR(2, "main"),
		newPR(3, "feature/c", "priority:low"),
	)
	a := newTestApp(t, g, gh)

	ov, err := a.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, numbersOf(ov.PullRequests))
	assert.Equal(t, []int{3}, numbersOf(ov.LowPriority))
	assert.Equal(t, "main", ov.CurrentBranch)
	require.NotNil(t, ov.Current)
	assert.Equal(t, 2, ov.Current.Number)
	assert.Equal(t, map[string]int{"feature/a": 3}, ov.Behind)

	assert.Equal(t, []int{1, 2, 3}, numbersOf(a.cache.Get("github")), "refresh writes the cache")
}

func TestOverview_CurrentFallsBackToList(t *testing.T) {
	g := gittest.New()
	g.CurrentBranch = "feature/a"
	gh := githubtest.New(newPR(1, "feature/a"))
	gh.Errors["GetPullRequestByBranch"] = errors.New("rate limited")
	a := newTestApp(t, g, gh)

	ov, err := a.Overview(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ov.Current)
	assert.Equal(t, 1, ov.Current.Number)
}

func TestOverview_ListFailure(t *testing.T) {
	gh := githubtest.New()
	gh.Errors["ListOpenPullRequests"] = errors.New("offline")
	a := newTestApp(t, gittest.New(), gh)

	_, err := a.Overview(context.Background())
	var provErr *github.ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestOverview_BranchFailuresAreTolerated(t *testing.T) {
	g := gittest.New()
	g.Errors["GetCurrentBranch"] = errors.New("broken")
	g.Errors["ListLocalBranches"] = errors.New("broken")
	a := newTestApp(t, g, githubtest.New(newPR(1, "feature/a")))

	ov, err := a.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ov.CurrentBranch)
	assert.Nil(t, ov.Current)
	assert.Empty(t, ov.Behind)
}

func TestCachedOverview(t *testing.T) {
	a := newTestApp(t, gittest.New(), githubtest.New())

	_, ok := a.CachedOverview(context.Background())
	assert.False(t, ok)

	require.NoError(t, a.cache.Set("github", []github.PullRequest{newPR(4, "main"), newPR(5, "x", "priority:low")}))
	ov, ok := a.CachedOverview(context.Background())
	require.True(t, ok)
	assert.Equal(t, []int{4}, numbersOf(ov.PullRequests))
	assert.Equal(t, []int{5}, numbersOf(ov.LowPriority))
	require.NotNil(t, ov.Current)
	assert.Equal(t, 4, ov.Current.Number)
	assert.Empty(t, a.gh.Calls())
}

func TestResolveNumber(t *testing.T) {
	tests := []struct {
		name    string
		branch  string
		number  int
		want    int
		wantErr error
	}{
		{name: "explicit number", branch: "main", number: 7, want: 7},
		{name: "current branch", branch: "feature/a", want: 1},
		{name: "no pull request", branch: "main", wantErr: ErrNoCurrentPR},
		{name: "detached head", branch: "HEAD", wantErr: ErrNoCurrentPR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gittest.New()
			g.CurrentBranch = tt.branch
			a := newTestApp(t, g, githubtest.New(newPR(1, "feature/a")))

			got, err := a.ResolveNumber(context.Background(), tt.number)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckout_RecordsCheckoutTime(t *testing.T) {
	g := gittest.New().WithRemote("origin", "git@github.com:acme/api.git")
	a := newTestApp(t, g, githubtest.New(newPR(9, "feature/nine")))

	result, err := a.Checkout(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, checkout.Result{Branch: "feature/nine", Created: true, Remote: "origin"}, result)
	assert.Equal(t, []string{"fetch origin", "checkout -b feature/nine origin/feature/nine"}, g.Calls())
	assert.Equal(t, fixedNow.UnixMilli(), a.cache.GetLastCheckedOut(9))
}

func TestCheckout_UsesCachedPullRequest(t *testing.T) {
	gh := githubtest.New()
	gh.Errors["GetPullRequest"] = errors.New("should not be called")
	a := newTestApp(t, gittest.New(), gh)
	require.NoError(t, a.cache.Set("github", []github.PullRequest{newPR(3, "feature/three")}))

	result, err := a.Checkout(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "feature/three", result.Branch)
}

func TestCheckout_Failure(t *testing.T) {
	g := gittest.New()
	g.Errors["Fetch"] = errors.New("network down")
	a := newTestApp(t, g, githubtest.New(newPR(9, "feature/nine")))

	_, err := a.Checkout(context.Background(), 9)
	var coErr *checkout.CheckoutError
	require.ErrorAs(t, err, &coErr)
	assert.Equal(t, checkout.StepFetch, coErr.Step)
	assert.Zero(t, a.cache.GetLastCheckedOut(9))
}

func TestCheckout_UnknownPullRequest(t *testing.T) {
	a := newTestApp(t, gittest.New(), githubtest.New())

	_, err := a.Checkout(context.Background(), 404)
	var provErr *github.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Empty(t, a.git.Calls())
}

func TestSummary(t *testing.T) {
	gh := githubtest.New()
	gh.Details[5] = github.PullRequestDetail{
		PullRequest: newPR(5, "feature/five"),
		Body:        "Adds five.",
	}
	gh.Diffs[5] = "diff --git a/x b/x\n"
	a := newTestApp(t, gittest.New(), gh)

	md, err := a.Summary(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "# #5 PR feature/five\n\nAdds five.\n\n```diff\ndiff --git a/x b/x\n```", md)
}

func TestDiffStat(t *testing.T) {
	gh := githubtest.New()
	gh.Diffs[2] = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,2 +1,3 @@
 package main
+
+func main() {}
-// empty
`
	a := newTestApp(t, gittest.New(), gh)

	stats, err := a.DiffStat(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "main.go", stats[0].Name)
	assert.Equal(t, 2, stats[0].Additions)
	assert.Equal(t, 1, stats[0].Deletions)
}

func TestComment(t *testing.T) {
	a := newTestApp(t, gittest.New(), githubtest.New())

	require.Error(t, a.Comment(context.Background(), 1, ""))
	require.NoError(t, a.Comment(context.Background(), 1, "LGTM"))
	require.NoError(t, a.Close(context.Background(), 1))
	require.NoError(t, a.Browse(context.Background(), 1))

	assert.Equal(t, []string{"PostComment 1 LGTM", "ClosePullRequest 1", "OpenInBrowser 1"}, a.gh.Calls())
}

func TestRevalidate(t *testing.T) {
	g := gittest.New().WithBranch(git.NewLocalBranch("feature/a", "origin/feature/a", false, false, 0, 2))
	g.CurrentBranch = "feature/a"
	gh := githubtest.New(newPR(1, "feature/a"), newPR(2, "feature/b"))
	a := newTestApp(t, g, gh)
	require.NoError(t, a.cache.Set("github", []github.PullRequest{newPR(1, "feature/a")}))

	type render struct {
		numbers []int
		stale   bool
	}
	var renders []render
	err := a.Revalidate(context.Background(), func(ov Overview, stale bool) {
		renders = append(renders, render{numbers: numbersOf(ov.PullRequests), stale: stale})
		require.NotNil(t, ov.Current)
		assert.Equal(t, 1, ov.Current.Number)
		assert.Equal(t, map[string]int{"feature/a": 2}, ov.Behind)
	})
	require.NoError(t, err)

	assert.Equal(t, []render{
		{numbers: []int{1}, stale: true},
		{numbers: []int{1, 2}, stale: false},
	}, renders)
}

func TestRevalidate_FetchFailureKeepsStale(t *testing.T) {
	gh := githubtest.New()
	gh.Errors["ListOpenPullRequests"] = errors.New("offline")
	a := newTestApp(t, gittest.New(), gh)
	require.NoError(t, a.cache.Set("github", []github.PullRequest{newPR(1, "feature/a")}))

	var stales []bool
	err := a.Revalidate(context.Background(), func(_ Overview, stale bool) {
		stales = append(stales, stale)
	})

	var provErr *github.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, []bool{true}, stales)
	assert.Equal(t, []int{1}, numbersOf(a.cache.Get("github")))
}

func TestLocalPullRequests(t *testing.T) {
	g := gittest.New().
		WithBranch(git.NewLocalBranch("main", "origin/main", true, false, 0, 0)).
		WithBranch(git.NewLocalBranch("feature/a", "origin/feature/a", false, false, 0, 3)).
		WithBranch(git.NewLocalBranch("scratch", "", false, false, 0, 0))
	gh := githubtest.New(
		newPR(1, "feature/a"),
		newPR(2, "main"),
		newPR(3, "feature/remote-only"),
	)
	a := newTestApp(t, g, gh)

	local, err := a.LocalPullRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, local, 2)

	assert.Equal(t, 1, local[0].PR.Number)
	assert.Equal(t, 3, local[0].Behind)
	assert.False(t, local[0].IsCheckedOut)

	assert.Equal(t, 2, local[1].PR.Number)
	assert.True(t, local[1].IsCheckedOut)

	assert.Len(t, a.cache.Get("github"), 3, "an empty cache is filled first")
}

func TestLocalPullRequests_UsesCache(t *testing.T) {
	g := gittest.New().WithBranch(git.NewLocalBranch("feature/a", "origin/feature/a", false, false, 0, 0))
	gh := githubtest.New()
	gh.Errors["ListOpenPullRequests"] = errors.New("offline")
	a := newTestApp(t, g, gh)
	require.NoError(t, a.cache.Set("github", []github.PullRequest{newPR(1, "feature/a")}))

	local, err := a.LocalPullRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, local, 1)
	assert.Equal(t, 1, local[0].PR.Number)
}

func TestLocalPullRequests_BranchFailure(t *testing.T) {
	g := gittest.New()
	g.Errors["ListLocalBranches"] = errors.New("broken")
	a := newTestApp(t, g, githubtest.New(newPR(1, "feature/a")))

	_, err := a.LocalPullRequests(context.Background())
	assert.ErrorContains(t, err, "failed to read branches")
}
