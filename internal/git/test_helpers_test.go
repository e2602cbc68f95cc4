package git

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/pullgod/internal/runner"
)

const testTimeout = 10 * time.Second

// sandbox is a throwaway repository with a GitCli pointed at it. Setup commands
// go through the same runner the code under test uses.
type sandbox struct {
	dir string
	git *GitCli
	run *runner.Exec
	t   *testing.T
}

func newSandbox(t *testing.T, dryRun bool) *sandbox {
	t.Helper()
	skipIfNoGit(t)

	sb := &sandbox{dir: t.TempDir(), run: runner.New(testTimeout), t: t}
	sb.gitIn(sb.dir, "init", "-b", "main")
	sb.identify(sb.dir, "Test User", "test@example.com")
	sb.git = gitAt(dryRun, sb.dir)
	return sb
}

func gitAt(dryRun bool, dir string) *GitCli {
	g := New(dryRun, dir, runner.New(testTimeout))
	g.log = clog.New(io.Discard)
	return g
}

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// gitIn runs a setup command in dir and fails the test on error.
func (sb *sandbox) gitIn(dir string, args ...string) string {
	sb.t.Helper()
	out, err := sb.run.Run(context.Background(), dir, "git", args...)
	require.NoError(sb.t, err)
	return out
}

func (sb *sandbox) identify(dir, name, email string) {
	sb.t.Helper()
	sb.gitIn(dir, "config", "user.name", name)
	sb.gitIn(dir, "config", "user.email", email)
}

// commit appends message to file.txt, commits it and returns the short SHA.
func (sb *sandbox) commit(message string) string {
	sb.t.Helper()
	appendToFile(sb.t, filepath.Join(sb.dir, "file.txt"), message+"\n")
	sb.gitIn(sb.dir, "add", "-A")
	sb.gitIn(sb.dir, "commit", "-m", message)
	return sb.gitIn(sb.dir, "rev-parse", "--short", "HEAD")
}

func (sb *sandbox) branch(name string) {
	sb.t.Helper()
	sb.gitIn(sb.dir, "branch", name)
}

func (sb *sandbox) checkout(ref string) {
	sb.t.Helper()
	sb.gitIn(sb.dir, "checkout", ref)
}

func (sb *sandbox) detach(ref string) {
	sb.t.Helper()
	sb.gitIn(sb.dir, "checkout", "--detach", ref)
}

// publish pushes the sandbox to a new bare repository registered as remote
// name, tracks name/main from main and returns the bare repository path.
func (sb *sandbox) publish(name string) string {
	sb.t.Helper()
	bare := filepath.Join(sb.t.TempDir(), name+".git")
	sb.gitIn(sb.dir, "clone", "--bare", sb.dir, bare)
	sb.gitIn(sb.dir, "remote", "add", name, bare)
	sb.gitIn(sb.dir, "fetch", name)
	sb.gitIn(sb.dir, "branch", "--set-upstream-to="+name+"/main", "main")
	return bare
}

// pushAsSomeoneElse commits on branch in a separate clone of bare and pushes it,
// so the sandbox falls behind.
func (sb *sandbox) pushAsSomeoneElse(bare, branch, message string) {
	sb.t.Helper()
	clone := filepath.Join(sb.t.TempDir(), "clone")
	sb.gitIn(sb.t.TempDir(), "clone", bare, clone)
	sb.identify(clone, "Other User", "other@example.com")
	sb.gitIn(clone, "checkout", "-B", branch)
	appendToFile(sb.t, filepath.Join(clone, "other.txt"), message+"\n")
	sb.gitIn(clone, "add", "-A")
	sb.gitIn(clone, "commit", "-m", message)
	sb.gitIn(clone, "push", "origin", branch)
}

// realPath returns the sandbox directory with symlinks resolved, as git reports it.
func (sb *sandbox) realPath() string {
	resolved, err := filepath.EvalSymlinks(sb.dir)
	if err != nil {
		return sb.dir
	}
	return resolved
}

func appendToFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func branchNames(branches []LocalBranch) []string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names
}

func remoteNames(remotes []Remote) []string {
	names := make([]string, len(remotes))
	for i, r := range remotes {
		names[i] = r.Name
	}
	return names
}
