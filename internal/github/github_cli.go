package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/jmcampanini/pullgod/internal/runner"
)

const listJSONFields = "number,title,author,headRefName,baseRefName,updatedAt,createdAt,url," +
	"mergeable,statusCheckRollup,headRepository,headRepositoryOwner,isCrossRepository,labels"

const viewJSONFields = listJSONFields + ",body,additions,deletions,changedFiles,isDraft,state"

// GitHubCli provides GitHub operations by executing the gh CLI.
type GitHubCli struct {
	host       string
	log        *clog.Logger
	runner     runner.Runner
	workingDir string
}

var _ GitHub = &GitHubCli{}

// NewCli creates a GitHubCli that executes gh commands in the specified working directory.
// host is used to build head repository URLs, which gh does not return.
func NewCli(workingDir, host string, r runner.Runner) *GitHubCli {
	return &GitHubCli{
		host:       host,
		log:        clog.Default().WithPrefix("github"),
		runner:     r,
		workingDir: workingDir,
	}
}

func (g *GitHubCli) executeGhCommand(ctx context.Context, args ...string) (string, error) {
	return g.runner.Run(ctx, g.workingDir, "gh", args...)
}

// ghPullRequest is the shape of `gh pr list/view --json` output.
type ghPullRequest struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	HeadRefName string    `json:"headRefName"`
	BaseRefName string    `json:"baseRefName"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url"`
	Mergeable   string    `json:"mergeable"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
	HeadRepository *struct {
		Name string `json:"name"`
	} `json:"headRepository"`
	HeadRepositoryOwner *struct {
		Login string `json:"login"`
	} `json:"headRepositoryOwner"`
	IsCrossRepository bool `json:"isCrossRepository"`
	Labels            []struct {
		Name string `json:"name"`
	} `json:"labels"`
	StatusCheckRollup json.RawMessage `json:"statusCheckRollup"`

	Additions    int    `json:"additions"`
	Body         string `json:"body"`
	ChangedFiles int    `json:"changedFiles"`
	Deletions    int    `json:"deletions"`
	IsDraft      bool   `json:"isDraft"`
	State        string `json:"state"`
}

func (g *GitHubCli) toPullRequest(raw ghPullRequest) PullRequest {
	pr := NewPullRequest(raw.Number, raw.Title, raw.Author.Login, raw.HeadRefName)
	pr.BaseRefName = raw.BaseRefName
	pr.UpdatedAt = raw.UpdatedAt
	pr.CreatedAt = raw.CreatedAt
	pr.URL = raw.URL
	pr.Mergeable = raw.Mergeable
	pr.Status = FoldStatusJSON(raw.StatusCheckRollup)

	if raw.HeadRepository != nil && raw.HeadRepositoryOwner != nil {
		owner := raw.HeadRepositoryOwner.Login
		pr.HeadRepository = &HeadRepository{
			URL:   fmt.Sprintf("https://%s/%s/%s", g.host, owner, raw.HeadRepository.Name),
			Owner: owner,
		}
	}

	for _, l := range raw.Labels {
		pr.Labels = append(pr.Labels, l.Name)
	}

	return pr
}

func (g *GitHubCli) ListOpenPullRequests(ctx context.Context, limit int) ([]PullRequest, error) {
	output, err := g.executeGhCommand(ctx,
		"pr", "list",
		"--state", "open",
		"--limit", strconv.Itoa(limit),
		"--search", "sort:updated-desc",
		"--json", listJSONFields,
	)
	if err != nil {
		return nil, providerError("list pull requests", err)
	}

	var raw []ghPullRequest
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		return nil, providerError("parse pull requests", err)
	}

	prs := make([]PullRequest, 0, len(raw))
	for _, r := range raw {
		prs = append(prs, g.toPullRequest(r))
	}

	g.log.Debug("Listed open pull requests", "count", len(prs))
	return prs, nil
}

func (g *GitHubCli) GetPullRequest(ctx context.Context, number int) (PullRequestDetail, error) {
	output, err := g.executeGhCommand(ctx, "pr", "view", strconv.Itoa(number), "--json", viewJSONFields)
	if err != nil {
		return PullRequestDetail{}, providerError(fmt.Sprintf("get pull request #%d", number), err)
	}

	var raw ghPullRequest
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		return PullRequestDetail{}, providerError(fmt.Sprintf("parse pull request #%d", number), err)
	}

	return PullRequestDetail{
		PullRequest:  g.toPullRequest(raw),
		Additions:    raw.Additions,
		Body:         raw.Body,
		ChangedFiles: raw.ChangedFiles,
		Deletions:    raw.Deletions,
		IsDraft:      raw.IsDraft,
		State:        raw.State,
	}, nil
}

func (g *GitHubCli) GetPullRequestByBranch(ctx context.Context, branch string) (*PullRequest, error) {
	output, err := g.executeGhCommand(ctx,
		"pr", "list",
		"--head", branch,
		"--state", "open",
		"--limit", "1",
		"--json", listJSONFields,
	)
	if err != nil {
		return nil, providerError("find pull request for branch "+branch, err)
	}

	result := gjson.Parse(output)
	if !result.IsArray() || len(result.Array()) == 0 {
		return nil, nil
	}

	var raw ghPullRequest
	if err := json.Unmarshal([]byte(result.Array()[0].Raw), &raw); err != nil {
		return nil, providerError("parse pull request for branch "+branch, err)
	}

	pr := g.toPullRequest(raw)
	return &pr, nil
}

func (g *GitHubCli) GetPullRequestDiff(ctx context.Context, number int) (string, error) {
	output, err := g.executeGhCommand(ctx, "pr", "diff", strconv.Itoa(number), "--color", "never")
	if err != nil {
		return "", providerError(fmt.Sprintf("get diff for #%d", number), err)
	}
	return output, nil
}

func (g *GitHubCli) OpenInBrowser(ctx context.Context, number int) error {
	if _, err := g.executeGhCommand(ctx, "pr", "view", strconv.Itoa(number), "--web"); err != nil {
		return providerError(fmt.Sprintf("open #%d in browser", number), err)
	}
	return nil
}

func (g *GitHubCli) AddLabel(ctx context.Context, number int, label string) error {
	if _, err := g.executeGhCommand(ctx, "pr", "edit", strconv.Itoa(number), "--add-label", label); err != nil {
		return providerError(fmt.Sprintf("add label %q to #%d", label, number), err)
	}
	return nil
}

func (g *GitHubCli) RemoveLabel(ctx context.Context, number int, label string) error {
	if _, err := g.executeGhCommand(ctx, "pr", "edit", strconv.Itoa(number), "--remove-label", label); err != nil {
		return providerError(fmt.Sprintf("remove label %q from #%d", label, number), err)
	}
	return nil
}

func (g *GitHubCli) EnsureLabel(ctx context.Context, label Label) error {
	args := []string{"label", "create", label.Name}
	if label.Color != "" {
		args = append(args, "--color", label.Color)
	}
	if label.Description != "" {
		args = append(args, "--description", label.Description)
	}
	if _, err := g.executeGhCommand(ctx, args...); err != nil {
		var procErr *runner.ProcessError
		if errors.As(err, &procErr) && strings.Contains(procErr.Detail(), "already exists") {
			return nil
		}
		return providerError(fmt.Sprintf("ensure label %q", label.Name), err)
	}
	return nil
}

func (g *GitHubCli) PostComment(ctx context.Context, number int, body string) error {
	if _, err := g.executeGhCommand(ctx, "pr", "comment", strconv.Itoa(number), "--body", body); err != nil {
		return providerError(fmt.Sprintf("comment on #%d", number), err)
	}
	return nil
}

func (g *GitHubCli) ClosePullRequest(ctx context.Context, number int) error {
	if _, err := g.executeGhCommand(ctx, "pr", "close", strconv.Itoa(number)); err != nil {
		return providerError(fmt.Sprintf("close #%d", number), err)
	}
	return nil
}
