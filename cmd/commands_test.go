package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/pullgod/internal/app"
	"github.com/jmcampanini/pullgod/internal/checkout"
	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/git/gittest"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/github/githubtest"
)

func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{arg: "42", want: 42},
		{arg: "0", wantErr: true},
		{arg: "-3", wantErr: true},
		{arg: "#42", wantErr: true},
		{arg: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePRNumber(tt.arg)
			if tt.wantErr {
				assert.EqualError(t, err, "invalid PR number: "+tt.arg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeCheckout(t *testing.T) {
	tests := []struct {
		name   string
		result checkout.Result
		want   string
	}{
		{
			name:   "local work kept",
			result: checkout.Result{Branch: "feature/a", LocalOnly: true},
			want:   "Switched to feature/a (local commits kept, nothing fetched)",
		},
		{
			name:   "created",
			result: checkout.Result{Branch: "feature/a", Created: true, Remote: "origin"},
			want:   "Created feature/a tracking origin/feature/a",
		},
		{
			name:   "fork created",
			result: checkout.Result{Branch: "fix", Created: true, Remote: "alice", RemoteAdded: true},
			want:   "Added remote alice and created fix tracking alice/fix",
		},
		{
			name:   "fork pulled",
			result: checkout.Result{Branch: "fix", Remote: "alice", RemoteAdded: true},
			want:   "Added remote alice, switched to fix and pulled",
		},
		{
			name:   "pulled",
			result: checkout.Result{Branch: "feature/a", Remote: "origin"},
			want:   "Switched to feature/a and pulled from origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeCheckout(tt.result))
		})
	}
}

func TestRunCheckout(t *testing.T) {
	env := useTestApp(t, gittest.New(), githubtest.New(testPR(9, "Nine", "feature/nine")))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runCheckout(cmd, []string{"9"}))

	assert.Equal(t, "Created feature/nine tracking origin/feature/nine\n", stdout.String())
	assert.Equal(t, []string{"fetch origin", "checkout -b feature/nine origin/feature/nine"}, env.git.Calls())
	assert.NotZero(t, env.cache.GetLastCheckedOut(9))
}

func TestRunCheckout_Failure(t *testing.T) {
	g := gittest.New()
	g.Errors["Fetch"] = errors.New("network down")
	useTestApp(t, g, githubtest.New(testPR(9, "Nine", "feature/nine")))
	cmd, _, _ := newTestCommand()

	err := runCheckout(cmd, []string{"9"})
	var coErr *checkout.CheckoutError
	require.ErrorAs(t, err, &coErr)
	assert.Equal(t, checkout.StepFetch, coErr.Step)
}

func TestRunCheckout_InvalidNumber(t *testing.T) {
	cmd, _, _ := newTestCommand()
	assert.EqualError(t, runCheckout(cmd, []string{"nine"}), "invalid PR number: nine")
}

func TestRunView(t *testing.T) {
	gh := githubtest.New()
	gh.Details[5] = github.PullRequestDetail{
		PullRequest: testPR(5, "Add caching", "feature/cache"),
		Body:        "Caches the list.",
		State:       "OPEN",
	}
	useTestApp(t, gittest.New(), gh)
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runView(cmd, []string{"5"}))
	assert.Contains(t, stdout.String(), "#5 Add caching")
	assert.Contains(t, stdout.String(), "Caches the list.")
}

func TestRunView_DefaultsToCurrentBranch(t *testing.T) {
	g := gittest.New()
	g.CurrentBranch = "feature/cache"
	useTestApp(t, g, githubtest.New(testPR(5, "Add caching", "feature/cache")))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runView(cmd, nil))
	assert.Contains(t, stdout.String(), "#5 Add caching")
}

func TestRunView_FzfPrintsErrors(t *testing.T) {
	useTestApp(t, gittest.New(), githubtest.New())
	setFlag(t, &viewFzfFlag, true)
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runView(cmd, []string{"404"}))
	assert.Contains(t, stdout.String(), "Error: failed to get pull request")
}

func TestRunView_NoCurrentPR(t *testing.T) {
	useTestApp(t, gittest.New(), githubtest.New())
	cmd, _, _ := newTestCommand()

	assert.ErrorIs(t, runView(cmd, nil), app.ErrNoCurrentPR)
}

const testDiff = `diff --git a/README.md b/README.md
index 1111111..2222222 100644
--- a/README.md
+++ b/README.md
@@ -1 +1,2 @@
 # api
+Fast.
`

func TestRunDiff(t *testing.T) {
	gh := githubtest.New()
	gh.Diffs[3] = testDiff
	useTestApp(t, gittest.New(), gh)

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runDiff(cmd, []string{"3"}))
	assert.Equal(t, testDiff+"\n", stdout.String())

	setFlag(t, &diffStatFlag, true)
	cmd, stdout, _ = newTestCommand()
	require.NoError(t, runDiff(cmd, []string{"3"}))
	assert.Equal(t, " README.md | +1 -0\n 1 file changed, 1 insertion(+), 0 deletions(-)\n", stdout.String())
}

func TestRunSummary(t *testing.T) {
	gh := githubtest.New()
	gh.Details[3] = github.PullRequestDetail{PullRequest: testPR(3, "Speed up", "fast"), Body: "Makes it fast."}
	gh.Diffs[3] = testDiff
	useTestApp(t, gittest.New(), gh)
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runSummary(cmd, []string{"3"}))
	assert.Equal(t, "# #3 Speed up\n\nMakes it fast.\n\n```diff\n"+testDiff+"```\n", stdout.String())
}

func TestRunBrowse(t *testing.T) {
	g := gittest.New()
	g.CurrentBranch = "fast"
	env := useTestApp(t, g, githubtest.New(testPR(3, "Speed up", "fast")))
	cmd, _, _ := newTestCommand()

	require.NoError(t, runBrowse(cmd, nil))
	assert.Equal(t, []string{"OpenInBrowser 3"}, env.gh.Calls())
}

func TestRunClose(t *testing.T) {
	tests := []struct {
		name      string
		yes       bool
		confirm   bool
		wantOut   string
		wantCalls []string
	}{
		{name: "yes flag", yes: true, wantOut: "Closed #3\n", wantCalls: []string{"ClosePullRequest 3"}},
		{name: "confirmed", confirm: true, wantOut: "Closed #3\n", wantCalls: []string{"ClosePullRequest 3"}},
		{name: "declined", confirm: false, wantOut: "Aborted.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := useTestApp(t, gittest.New(), githubtest.New())
			setFlag(t, &closeYesFlag, tt.yes)
			prompted := false
			setFlag(t, &confirmPrompt, func(title, _ string) (bool, error) {
				prompted = true
				assert.Equal(t, "Close pull request #3?", title)
				return tt.confirm, nil
			})
			cmd, stdout, _ := newTestCommand()

			require.NoError(t, runClose(cmd, []string{"3"}))
			assert.Equal(t, tt.wantOut, stdout.String())
			assert.Equal(t, tt.wantCalls, env.gh.Calls())
			assert.Equal(t, !tt.yes, prompted)
		})
	}
}

func TestRunComment(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		prompt    string
		wantOut   string
		wantCalls []string
	}{
		{name: "body flag", body: "LGTM", wantOut: "Commented on #3\n", wantCalls: []string{"PostComment 3 LGTM"}},
		{name: "prompted", prompt: "  Needs tests  \n", wantOut: "Commented on #3\n", wantCalls: []string{"PostComment 3 Needs tests"}},
		{name: "empty prompt", prompt: "   ", wantOut: "Empty comment, nothing posted.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := useTestApp(t, gittest.New(), githubtest.New())
			setFlag(t, &commentBodyFlag, tt.body)
			setFlag(t, &textPrompt, func(string) (string, error) { return tt.prompt, nil })
			cmd, stdout, _ := newTestCommand()

			require.NoError(t, runComment(cmd, []string{"3"}))
			assert.Equal(t, tt.wantOut, stdout.String())
			assert.Equal(t, tt.wantCalls, env.gh.Calls())
		})
	}
}

func TestRunLabel(t *testing.T) {
	env := useTestApp(t, gittest.New(), githubtest.New(testPR(3, "Speed up", "fast")))

	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runLabelAdd(cmd, []string{"3", "bug"}))
	assert.Equal(t, "Added bug to #3\n", stdout.String())

	cmd, stdout, _ = newTestCommand()
	require.NoError(t, runLabelRemove(cmd, []string{"3", "bug"}))
	assert.Equal(t, "Removed bug from #3\n", stdout.String())

	cmd, stdout, _ = newTestCommand()
	require.NoError(t, runLabelEnsure(cmd, nil))
	assert.Equal(t, "Label priority:low is available\n", stdout.String())

	cmd, _, _ = newTestCommand()
	require.NoError(t, runLabelEnsure(cmd, []string{"needs-docs"}))

	assert.Equal(t, []string{
		"AddLabel 3 bug",
		"RemoveLabel 3 bug",
		"EnsureLabel priority:low",
		"EnsureLabel needs-docs",
	}, env.gh.Calls())
	assert.Equal(t, "c2e0c6", env.gh.Labels["priority:low"].Color)
}

func TestRunLabel_Failure(t *testing.T) {
	gh := githubtest.New()
	gh.Errors["AddLabel"] = errors.New("forbidden")
	useTestApp(t, gittest.New(), gh)
	cmd, _, _ := newTestCommand()

	err := runLabelAdd(cmd, []string{"3", "bug"})
	var provErr *github.ProviderError
	require.ErrorAs(t, err, &provErr)
}

func TestRunPriority(t *testing.T) {
	env := useTestApp(t, gittest.New(), githubtest.New(
		testPR(1, "One", "one"),
		testPR(2, "Two", "two", "priority:low"),
	))
	setFlag(t, &lowPriorityPrompt, func(prs []github.PullRequest, isLow func(github.PullRequest) bool) ([]int, error) {
		require.Len(t, prs, 2)
		assert.False(t, isLow(prs[0]))
		assert.True(t, isLow(prs[1]))
		return []int{1}, nil
	})
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runPriority(cmd, nil))

	assert.Equal(t, "Added priority:low on #1\nRemoved priority:low on #2\n", stdout.String())
	assert.Equal(t, []string{
		"EnsureLabel priority:low",
		"AddLabel 1 priority:low",
		"RemoveLabel 2 priority:low",
	}, env.gh.Calls())
}

func TestRunPriority_NoChanges(t *testing.T) {
	useTestApp(t, gittest.New(), githubtest.New(testPR(1, "One", "one")))
	setFlag(t, &lowPriorityPrompt, func([]github.PullRequest, func(github.PullRequest) bool) ([]int, error) {
		return nil, nil
	})
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runPriority(cmd, nil))
	assert.Equal(t, "No changes.\n", stdout.String())
}

func TestRunCurrent(t *testing.T) {
	g := gittest.New()
	g.CurrentBranch = "fast"
	pr := testPR(3, "Speed up", "fast")
	pr.Status = github.StatusFailure
	useTestApp(t, g, githubtest.New(pr))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runCurrent(cmd, nil))
	assert.Equal(t, "#3 ✗ Speed up [octocat] fast\n", stdout.String())
}

func TestRunCurrent_None(t *testing.T) {
	useTestApp(t, gittest.New(), githubtest.New())
	cmd, _, _ := newTestCommand()

	assert.ErrorIs(t, runCurrent(cmd, nil), app.ErrNoCurrentPR)
}

func TestRunBehind(t *testing.T) {
	g := gittest.New().
		WithBranch(git.NewLocalBranch("zeta", "origin/zeta", false, false, 0, 1)).
		WithBranch(git.NewLocalBranch("main", "origin/main", true, false, 0, 0)).
		WithBranch(git.NewLocalBranch("alpha", "origin/alpha", false, false, 2, 5))
	useTestApp(t, g, githubtest.New())
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runBehind(cmd, nil))
	assert.Equal(t, "alpha\t5\nzeta\t1\n", stdout.String())
}

func TestRunStatus(t *testing.T) {
	g := gittest.New().WithBranch(git.NewLocalBranch("fast", "origin/fast", true, false, 0, 2))
	g.CurrentBranch = "fast"
	useTestApp(t, g, githubtest.New(
		testPR(3, "Speed up", "fast"),
		testPR(4, "Later", "later", "priority:low"),
	))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runStatus(cmd, nil))
	assert.Equal(t, []string{
		"Repository:         acme/api",
		"Branch:             fast",
		"Pull request:       #3 ? Speed up",
		"Behind upstream:    2",
		"Open pull requests: 2 (1 low priority)",
	}, trimmedLines(stdout.String()))
}

func TestRunStatus_NoPullRequest(t *testing.T) {
	g := gittest.New()
	g.CurrentBranch = "main"
	useTestApp(t, g, githubtest.New(testPR(4, "Later", "later")))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runStatus(cmd, nil))
	assert.Equal(t, []string{
		"Repository:         acme/api",
		"Branch:             main",
		"Pull request:       none",
		"Open pull requests: 1 (0 low priority)",
	}, trimmedLines(stdout.String()))
}

func TestRunSyncOnce(t *testing.T) {
	env := useTestApp(t, gittest.New(), githubtest.New(testPR(1, "One", "one")))
	setFlag(t, &syncOnceFlag, true)
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runSync(cmd, nil))
	assert.Equal(t, "sync: no-pull-request\n", stdout.String())
	assert.Len(t, env.cache.Get("github"), 1)
}

func TestRunInit(t *testing.T) {
	cmd, stdout, _ := newTestCommand()
	require.NoError(t, runInit(cmd, []string{"zsh"}))
	assert.Contains(t, stdout.String(), "pgo()")

	cmd, _, _ = newTestCommand()
	assert.EqualError(t, runInit(cmd, []string{"tcsh"}), "unsupported shell: tcsh (supported: fish, zsh, bash)")
}

func TestLoadAppError(t *testing.T) {
	prev := appLoader
	appLoader = func(_ context.Context) (*app.App, error) { return nil, errors.New("not a git repository") }
	t.Cleanup(func() { appLoader = prev })
	cmd, _, _ := newTestCommand()

	assert.EqualError(t, runList(cmd, nil), "not a git repository")
}

func TestRunLocal(t *testing.T) {
	g := gittest.New().
		WithBranch(git.NewLocalBranch("fast", "origin/fast", false, false, 0, 2)).
		WithBranch(git.NewLocalBranch("main", "origin/main", true, false, 0, 0))
	useTestApp(t, g, githubtest.New(
		testPR(3, "Speed up", "fast"),
		testPR(4, "Remote only", "elsewhere"),
		testPR(5, "Tidy main", "main"),
	))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runLocal(cmd, nil))
	assert.Equal(t, []string{
		"  #3 fast ↓2 Speed up",
		"* #5 main    Tidy main",
	}, trimmedLines(stdout.String()))
}

func TestRunLocal_None(t *testing.T) {
	useTestApp(t, gittest.New(), githubtest.New(testPR(3, "Speed up", "fast")))
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, runLocal(cmd, nil))
	assert.Equal(t, "No open pull requests have a local branch.\n", stdout.String())
}
