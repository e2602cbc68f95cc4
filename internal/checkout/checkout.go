// Package checkout brings the local repository onto a pull request's head branch.
package checkout

import (
	"context"
	"fmt"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/github"
)

const defaultRemote = "origin"

type Step string

const (
	StepInspect     Step = "inspect"
	StepAddRemote   Step = "add-remote"
	StepFetch       Step = "fetch"
	StepCheckout    Step = "checkout"
	StepPull        Step = "pull"
	StepCreateTrack Step = "create-tracking-branch"
)

// CheckoutError reports the step at which a checkout stopped. Earlier steps are not undone.
type CheckoutError struct {
	Branch string
	Step   Step
	Err    error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout of %s failed at %s: %v", e.Branch, e.Step, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// Result describes what a checkout did.
type Result struct {
	Branch      string
	Created     bool
	LocalOnly   bool
	Remote      string
	RemoteAdded bool
}

type Reconciler struct {
	git   git.Git
	log   *clog.Logger
	owner string
}

// NewReconciler creates a Reconciler for the repository owned by owner.
// Pull requests from repositories of other owners are fetched from a remote named after the fork owner.
func NewReconciler(g git.Git, owner string) *Reconciler {
	return &Reconciler{
		git:   g,
		log:   clog.Default().WithPrefix("checkout"),
		owner: owner,
	}
}

// Checkout switches to the pull request's head branch, fetching it first unless the local
// branch carries work that is not on its upstream. Once started it runs to completion
// even if ctx is cancelled.
func (r *Reconciler) Checkout(ctx context.Context, pr github.PullRequest) (Result, error) {
	ctx = context.WithoutCancel(ctx)
	branch := pr.HeadRefName
	result := Result{Branch: branch}

	fail := func(step Step, err error) (Result, error) {
		r.log.Debug("Checkout step failed", "branch", branch, "step", step, "error", err)
		return result, &CheckoutError{Branch: branch, Step: step, Err: err}
	}

	local, err := r.git.GetLocalBranch(ctx, branch)
	if err != nil {
		return fail(StepInspect, err)
	}

	if local != nil {
		keep, err := r.hasLocalWork(ctx, *local)
		if err != nil {
			return fail(StepInspect, err)
		}
		if keep {
			r.log.Info("Local branch has unpushed work, switching without fetching", "branch", branch)
			if err := r.git.Checkout(ctx, branch); err != nil {
				return fail(StepCheckout, err)
			}
			result.LocalOnly = true
			return result, nil
		}
	}

	remote := defaultRemote
	if pr.IsFork(r.owner) {
		remote = pr.HeadRepository.Owner
		exists, err := r.git.RemoteExists(ctx, remote)
		if err != nil {
			return fail(StepAddRemote, err)
		}
		if !exists {
			if err := r.git.AddRemote(ctx, remote, pr.HeadRepository.CloneURL()); err != nil {
				return fail(StepAddRemote, err)
			}
			result.RemoteAdded = true
		}
	}
	result.Remote = remote

	if err := r.git.Fetch(ctx, remote); err != nil {
		return fail(StepFetch, err)
	}

	if local != nil {
		if err := r.git.Checkout(ctx, branch); err != nil {
			return fail(StepCheckout, err)
		}
		if err := r.git.Pull(ctx, remote, branch, false); err != nil {
			return fail(StepPull, err)
		}
		return result, nil
	}

	if err := r.git.CheckoutNewTracking(ctx, branch, remote+"/"+branch); err != nil {
		return fail(StepCreateTrack, err)
	}
	result.Created = true
	return result, nil
}

// hasLocalWork reports whether a local branch must be left alone: it has no usable
// upstream, or it has commits the upstream lacks.
func (r *Reconciler) hasLocalWork(ctx context.Context, b git.LocalBranch) (bool, error) {
	if !b.HasUpstream() {
		return true, nil
	}
	return r.git.HasUnpushedCommits(ctx, b.UpstreamName, b.Name)
}
