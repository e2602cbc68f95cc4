// Package autosync periodically refreshes the pull request cache and fast-forwards the
// current branch when that is safe.
package autosync

import (
	"context"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/github"
)

const DefaultInterval = 60 * time.Second

// Source is the subset of the pull request source used by the syncer.
type Source interface {
	Refresh(ctx context.Context) ([]github.PullRequest, error)
	GetCurrentPullRequest(ctx context.Context) *github.PullRequest
}

// Outcome describes what a single cycle did.
type Outcome string

const (
	OutcomeUpdated       Outcome = "updated"
	OutcomeDirty         Outcome = "dirty"
	OutcomeNoPR          Outcome = "no-pull-request"
	OutcomeNoUpstream    Outcome = "no-upstream"
	OutcomeFetchFailed   Outcome = "fetch-failed"
	OutcomeUnpushed      Outcome = "unpushed"
	OutcomeUpToDate      Outcome = "up-to-date"
	OutcomeFailed        Outcome = "failed"
	OutcomeNotRepository Outcome = "not-repository"
)

type Syncer struct {
	git      git.Git
	interval time.Duration
	log      *clog.Logger
	source   Source

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(g git.Git, source Source, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Syncer{
		git:      g,
		interval: interval,
		log:      clog.Default().WithPrefix("sync"),
		source:   source,
	}
}

// Start runs a cycle right away and then every interval until ctx is done or
// Stop is called.
// Calling Start on a running Syncer does nothing.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
}

// Stop prevents further cycles and waits for an in-flight cycle to finish.
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Syncer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// a started cycle is not interrupted by Stop
	s.RunOnce(context.WithoutCancel(ctx))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(context.WithoutCancel(ctx))
		}
	}
}

// RunOnce refreshes the cache and then fast-forwards the current branch if it belongs to an
// open pull request, is clean, tracks an upstream, has nothing unpushed and is behind.
// Failures are logged at debug level and never returned.
func (s *Syncer) RunOnce(ctx context.Context) Outcome {
	if _, err := s.source.Refresh(ctx); err != nil {
		s.log.Debug("Failed to refresh pull requests", "error", err)
	}

	outcome := s.fastForward(ctx)
	s.log.Debug("Sync cycle finished", "outcome", outcome)
	return outcome
}

func (s *Syncer) fastForward(ctx context.Context) Outcome {
	inside, err := s.git.IsInsideWorkTree(ctx)
	if err != nil || !inside {
		return OutcomeNotRepository
	}

	dirty, err := s.git.HasUncommittedChanges(ctx)
	if err != nil {
		s.log.Debug("Failed to check working tree", "error", err)
		return OutcomeFailed
	}
	if dirty {
		return OutcomeDirty
	}

	pr := s.source.GetCurrentPullRequest(ctx)
	if pr == nil {
		return OutcomeNoPR
	}

	branch, err := s.git.GetLocalBranch(ctx, pr.HeadRefName)
	if err != nil {
		s.log.Debug("Failed to read branch", "branch", pr.HeadRefName, "error", err)
		return OutcomeFailed
	}
	if branch == nil || !branch.HasUpstream() {
		return OutcomeNoUpstream
	}

	remote := branch.UpstreamRemote()
	if err := s.git.Fetch(ctx, remote); err != nil {
		s.log.Debug("Fetch failed", "remote", remote, "error", err)
		return OutcomeFetchFailed
	}

	unpushed, err := s.git.HasUnpushedCommits(ctx, branch.UpstreamName, branch.Name)
	if err != nil {
		s.log.Debug("Failed to compare with upstream", "branch", branch.Name, "error", err)
		return OutcomeFailed
	}
	if unpushed {
		return OutcomeUnpushed
	}

	// re-read tracking info now that the fetch has updated the remote ref
	branch, err = s.git.GetLocalBranch(ctx, branch.Name)
	if err != nil || branch == nil {
		return OutcomeFailed
	}
	if branch.Behind < 1 {
		return OutcomeUpToDate
	}

	if err := s.git.Pull(ctx, remote, branch.UpstreamBranch(), true); err != nil {
		s.log.Debug("Fast-forward failed", "branch", branch.Name, "error", err)
		return OutcomeFailed
	}

	s.log.Info("Fast-forwarded branch", "branch", branch.Name, "commits", branch.Behind)
	return OutcomeUpdated
}
