package pr

import (
	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/github"
)

// BranchMatch is a pull request together with the local branch that tracks it, if any.
type BranchMatch struct {
	Behind         int
	HasLocalBranch bool
	IsCheckedOut   bool
	PR             github.PullRequest
}

// Match returns a BranchMatch for each PR, keyed on the PR's head branch name.
func Match(prs []github.PullRequest, branches []git.LocalBranch) []BranchMatch {
	byName := make(map[string]git.LocalBranch, len(branches))
	for _, b := range branches {
		byName[b.Name] = b
	}

	result := make([]BranchMatch, len(prs))
	for i, pr := range prs {
		match := BranchMatch{PR: pr}
		if b, ok := byName[pr.HeadRefName]; ok {
			match.Behind = b.Behind
			match.HasLocalBranch = true
			match.IsCheckedOut = b.IsCheckedOut
		}
		result[i] = match
	}
	return result
}

// FindForBranch returns the pull request whose head branch is branch, or nil.
func FindForBranch(prs []github.PullRequest, branch string) *github.PullRequest {
	if branch == "" || branch == "HEAD" {
		return nil
	}
	for i := range prs {
		if prs[i].HeadRefName == branch {
			return &prs[i]
		}
	}
	return nil
}

// SplitByPriority separates low priority pull requests, preserving order.
func (s *Source) SplitByPriority(prs []github.PullRequest) (regular, low []github.PullRequest) {
	for _, pr := range prs {
		if s.IsLowPriority(pr) {
			low = append(low, pr)
		} else {
			regular = append(regular, pr)
		}
	}
	return regular, low
}
