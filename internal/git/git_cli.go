package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/runner"
)

// GitCli provides high-level git operations by executing real git commands via the git CLI.
type GitCli struct {
	dryRun     bool
	log        *clog.Logger
	runner     runner.Runner
	workingDir string
}

var _ Git = &GitCli{}

// New creates a new GitCli instance that executes git commands in the specified working directory.
func New(dryRun bool, workingDir string, r runner.Runner) *GitCli {
	return &GitCli{
		dryRun:     dryRun,
		log:        clog.Default().WithPrefix("git"),
		runner:     r,
		workingDir: workingDir,
	}
}

func (g *GitCli) executeGitCommand(ctx context.Context, args ...string) (string, error) {
	return g.runner.Run(ctx, g.workingDir, "git", args...)
}

// executeMutatingCommand runs a git command that modifies state, unless in dry-run mode.
func (g *GitCli) executeMutatingCommand(ctx context.Context, errContext string, args ...string) error {
	if g.dryRun {
		g.log.Info("Would execute git command", "cmd", "git", "args", args)
		return nil
	}
	if _, err := g.executeGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("%s: %w", errContext, err)
	}
	return nil
}

// stderrContains reports whether err is a process failure whose stderr contains substr.
func stderrContains(err error, substr string) bool {
	var procErr *runner.ProcessError
	if errors.As(err, &procErr) {
		return strings.Contains(procErr.Detail(), substr)
	}
	return false
}

func (g *GitCli) IsInsideWorkTree(ctx context.Context) (bool, error) {
	output, err := g.executeGitCommand(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if stderrContains(err, "not a git repo") {
			return false, nil
		}
		return false, fmt.Errorf("git command failed: %w", err)
	}
	return output == "true", nil
}

func (g *GitCli) GetMainWorktreePath(ctx context.Context) (string, error) {
	commonDir, err := g.executeGitCommand(ctx, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("failed to get git common dir: %w", err)
	}

	absCommonDir := commonDir
	if !filepath.IsAbs(commonDir) {
		absCommonDir = filepath.Join(g.workingDir, commonDir)
	}

	absCommonDir, err = filepath.Abs(absCommonDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	mainWorktree := filepath.Dir(filepath.Clean(absCommonDir))

	g.log.Debug("Resolved main worktree path", "commonDir", commonDir, "mainWorktree", mainWorktree)
	return mainWorktree, nil
}

func (g *GitCli) GetWorktreeRoot(ctx context.Context) (string, error) {
	output, err := g.executeGitCommand(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		if stderrContains(err, "not a git repo") {
			// Not in a git repo - this is a valid state, not an error
			return "", nil
		}
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return output, nil
}

func (g *GitCli) GetCurrentBranch(ctx context.Context) (string, error) {
	output, err := g.executeGitCommand(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return output, nil
}

func (g *GitCli) ListRemotes(ctx context.Context) ([]Remote, error) {
	output, err := g.executeGitCommand(ctx, "remote", "-v")
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	return parseRemotes(output), nil
}

// parseRemotes parses `git remote -v` output, e.g.:
//
//	origin	https://github.com/user/repo.git (fetch)
//	origin	https://github.com/user/repo.git (push)
//
// Remotes are returned in first-seen order.
func parseRemotes(output string) []Remote {
	var remotes []Remote
	index := make(map[string]int)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, url := fields[0], fields[1]
		kind := "(fetch)"
		if len(fields) >= 3 {
			kind = fields[2]
		}

		i, ok := index[name]
		if !ok {
			i = len(remotes)
			index[name] = i
			remotes = append(remotes, Remote{Name: name})
		}
		switch kind {
		case "(push)":
			remotes[i].PushURL = url
		default:
			remotes[i].FetchURL = url
		}
	}

	return remotes
}

func (g *GitCli) RemoteExists(ctx context.Context, name string) (bool, error) {
	_, err := g.executeGitCommand(ctx, "remote", "get-url", name)
	if err == nil {
		return true, nil
	}

	if stderrContains(err, "No such remote") {
		return false, nil
	}

	return false, err
}

func (g *GitCli) ListLocalBranches(ctx context.Context) ([]LocalBranch, error) {
	output, err := g.executeGitCommand(ctx, "for-each-ref", "--format="+branchFormat, "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	branches := parseBranches(output)
	if branches == nil {
		branches = []LocalBranch{}
	}
	g.log.Debug("Listed local branches", "count", len(branches))
	return branches, nil
}

func (g *GitCli) GetLocalBranch(ctx context.Context, name string) (*LocalBranch, error) {
	branches, err := g.ListLocalBranches(ctx)
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

func (g *GitCli) HasUnpushedCommits(ctx context.Context, upstream, branch string) (bool, error) {
	output, err := g.executeGitCommand(ctx, "log", "--oneline", upstream+".."+branch)
	if err != nil {
		return false, fmt.Errorf("failed to compare %s with %s: %w", branch, upstream, err)
	}
	return output != "", nil
}

func (g *GitCli) HasUncommittedChanges(ctx context.Context) (bool, error) {
	output, err := g.executeGitCommand(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get working tree status: %w", err)
	}
	return output != "", nil
}

func (g *GitCli) AddRemote(ctx context.Context, name, url string) error {
	g.log.Info("Adding remote", "remote", name, "url", url)
	return g.executeMutatingCommand(ctx, "failed to add remote", "remote", "add", name, url)
}

func (g *GitCli) Fetch(ctx context.Context, remote string) error {
	g.log.Info("Fetching from remote", "remote", remote)
	return g.executeMutatingCommand(ctx, "failed to fetch from remote", "fetch", remote)
}

func (g *GitCli) Checkout(ctx context.Context, branch string) error {
	g.log.Info("Checking out branch", "branch", branch)
	return g.executeMutatingCommand(ctx, "failed to checkout branch", "checkout", branch)
}

func (g *GitCli) CheckoutNewTracking(ctx context.Context, branch, startPoint string) error {
	g.log.Info("Creating tracking branch", "branch", branch, "startPoint", startPoint)
	return g.executeMutatingCommand(ctx, "failed to create tracking branch", "checkout", "-b", branch, startPoint)
}

func (g *GitCli) Pull(ctx context.Context, remote, branch string, ffOnly bool) error {
	g.log.Info("Pulling branch", "remote", remote, "branch", branch, "ffOnly", ffOnly)
	args := []string{"pull"}
	if ffOnly {
		args = append(args, "--ff-only")
	}
	args = append(args, remote, branch)
	return g.executeMutatingCommand(ctx, "failed to pull branch", args...)
}
