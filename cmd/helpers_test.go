package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/app"
	"github.com/jmcampanini/pullgod/internal/cache"
	"github.com/jmcampanini/pullgod/internal/config"
	"github.com/jmcampanini/pullgod/internal/git/gittest"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/github/githubtest"
	"github.com/jmcampanini/pullgod/internal/repo"
)

type testEnv struct {
	app   *app.App
	cache *cache.Cache
	gh    *githubtest.Fake
	git   *gittest.Fake
}

// useTestApp makes every command in the test run against fakes.
func useTestApp(t *testing.T, g *gittest.Fake, gh *githubtest.Fake) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.GitHub.LabelDelay = 0
	c := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	a := app.New(cfg, g, gh, c, repo.OwnerRepo{Owner: "acme", Name: "api"})

	prev := appLoader
	appLoader = func(context.Context) (*app.App, error) { return a, nil }
	t.Cleanup(func() { appLoader = prev })

	return &testEnv{app: a, cache: c, gh: gh, git: g}
}

// setFlag sets a package-level flag variable for the duration of the test.
func setFlag[T any](t *testing.T, flag *T, value T) {
	t.Helper()
	prev := *flag
	*flag = value
	t.Cleanup(func() { *flag = prev })
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(context.Background())
	return cmd, stdout, stderr
}

func testPR(number int, title, branch string, labels ...string) github.PullRequest {
	p := github.NewPullRequest(number, title, "octocat", branch)
	p.CreatedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(number) * time.Hour)
	p.UpdatedAt = p.CreatedAt
	p.Labels = labels
	return p
}

// trimmedLines splits output into lines without the padding table renderers leave behind.
func trimmedLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}
