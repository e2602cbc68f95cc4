package github

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cli/go-gh"
	"github.com/cli/go-gh/pkg/api"
	"github.com/cli/go-gh/pkg/browser"
)

//go:embed queries/pull-request-fields.graphql
var pullRequestFieldsFragment string

//go:embed queries/open-pull-requests.graphql
var openPullRequestsQuery string

//go:embed queries/pull-request.graphql
var pullRequestQuery string

//go:embed queries/pull-request-by-branch.graphql
var pullRequestByBranchQuery string

const diffMediaType = "application/vnd.github.v3.diff"

// graphQLDoer is the subset of api.GQLClient used here.
type graphQLDoer interface {
	Do(query string, variables map[string]interface{}, response interface{}) error
}

// restDoer is the subset of api.RESTClient used here.
type restDoer interface {
	Get(path string, response interface{}) error
	Post(path string, body io.Reader, response interface{}) error
	Patch(path string, body io.Reader, response interface{}) error
	Delete(path string, response interface{}) error
	Request(method string, path string, body io.Reader) (*http.Response, error)
}

type browserLauncher interface {
	Browse(url string) error
}

// GitHubAPI provides GitHub operations through the GraphQL and REST APIs,
// authenticating the same way the gh CLI does.
type GitHubAPI struct {
	browser browserLauncher
	diff    restDoer
	gql     graphQLDoer
	host    string
	log     *clog.Logger
	name    string
	owner   string
	rest    restDoer
}

var _ GitHub = &GitHubAPI{}

// NewAPI creates a GitHubAPI for owner/name on host using gh's stored credentials.
func NewAPI(host, owner, name string) (*GitHubAPI, error) {
	opts := &api.ClientOptions{Host: host}

	gql, err := gh.GQLClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}
	rest, err := gh.RESTClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}
	diff, err := gh.RESTClient(&api.ClientOptions{
		Host:    host,
		Headers: map[string]string{"Accept": diffMediaType},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	b := browser.New("", os.Stdout, os.Stderr)
	return &GitHubAPI{
		browser: &b,
		diff:    diff,
		gql:     gql,
		host:    host,
		log:     clog.Default().WithPrefix("github"),
		name:    name,
		owner:   owner,
		rest:    rest,
	}, nil
}

// gqlPullRequest matches the pullRequestFields fragment.
type gqlPullRequest struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	HeadRefName string    `json:"headRefName"`
	BaseRefName string    `json:"baseRefName"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	URL         string    `json:"url"`
	Mergeable   string    `json:"mergeable"`
	Author      *struct {
		Login string `json:"login"`
	} `json:"author"`
	HeadRepository *struct {
		URL   string `json:"url"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"headRepository"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Commits struct {
		Nodes []struct {
			Commit struct {
				StatusCheckRollup json.RawMessage `json:"statusCheckRollup"`
			} `json:"commit"`
		} `json:"nodes"`
	} `json:"commits"`

	Additions    int    `json:"additions"`
	Body         string `json:"body"`
	ChangedFiles int    `json:"changedFiles"`
	Deletions    int    `json:"deletions"`
	IsDraft      bool   `json:"isDraft"`
	State        string `json:"state"`
}

func (raw gqlPullRequest) toPullRequest() PullRequest {
	var author string
	if raw.Author != nil {
		author = raw.Author.Login
	}

	pr := NewPullRequest(raw.Number, raw.Title, author, raw.HeadRefName)
	pr.BaseRefName = raw.BaseRefName
	pr.UpdatedAt = raw.UpdatedAt
	pr.CreatedAt = raw.CreatedAt
	pr.URL = raw.URL
	pr.Mergeable = raw.Mergeable

	if n := len(raw.Commits.Nodes); n > 0 {
		pr.Status = FoldStatusJSON(raw.Commits.Nodes[n-1].Commit.StatusCheckRollup)
	}

	if raw.HeadRepository != nil {
		pr.HeadRepository = &HeadRepository{
			URL:   raw.HeadRepository.URL,
			Owner: raw.HeadRepository.Owner.Login,
		}
	}

	for _, l := range raw.Labels.Nodes {
		pr.Labels = append(pr.Labels, l.Name)
	}

	return pr
}

func (raw gqlPullRequest) toDetail() PullRequestDetail {
	return PullRequestDetail{
		PullRequest:  raw.toPullRequest(),
		Additions:    raw.Additions,
		Body:         raw.Body,
		ChangedFiles: raw.ChangedFiles,
		Deletions:    raw.Deletions,
		IsDraft:      raw.IsDraft,
		State:        raw.State,
	}
}

func (g *GitHubAPI) query(op, query string, vars map[string]interface{}, resp interface{}) error {
	vars["owner"] = g.owner
	vars["name"] = g.name
	if err := g.gql.Do(query+"\n"+pullRequestFieldsFragment, vars, resp); err != nil {
		return providerError(op, err)
	}
	return nil
}

func (g *GitHubAPI) repoPath(format string, args ...interface{}) string {
	return fmt.Sprintf("repos/%s/%s/", g.owner, g.name) + fmt.Sprintf(format, args...)
}

func jsonBody(v interface{}) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (g *GitHubAPI) ListOpenPullRequests(_ context.Context, limit int) ([]PullRequest, error) {
	var resp struct {
		Repository struct {
			PullRequests struct {
				Nodes []gqlPullRequest `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	}
	if err := g.query("list pull requests", openPullRequestsQuery, map[string]interface{}{"limit": limit}, &resp); err != nil {
		return nil, err
	}

	nodes := resp.Repository.PullRequests.Nodes
	prs := make([]PullRequest, 0, len(nodes))
	for _, n := range nodes {
		prs = append(prs, n.toPullRequest())
	}

	g.log.Debug("Listed open pull requests", "count", len(prs))
	return prs, nil
}

func (g *GitHubAPI) GetPullRequest(_ context.Context, number int) (PullRequestDetail, error) {
	var resp struct {
		Repository struct {
			PullRequest *gqlPullRequest `json:"pullRequest"`
		} `json:"repository"`
	}
	op := fmt.Sprintf("get pull request #%d", number)
	if err := g.query(op, pullRequestQuery, map[string]interface{}{"number": number}, &resp); err != nil {
		return PullRequestDetail{}, err
	}
	if resp.Repository.PullRequest == nil {
		return PullRequestDetail{}, providerError(op, fmt.Errorf("pull request #%d not found", number))
	}
	return resp.Repository.PullRequest.toDetail(), nil
}

func (g *GitHubAPI) GetPullRequestByBranch(_ context.Context, branch string) (*PullRequest, error) {
	var resp struct {
		Repository struct {
			PullRequests struct {
				Nodes []gqlPullRequest `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	}
	if err := g.query("find pull request for branch "+branch, pullRequestByBranchQuery, map[string]interface{}{"branch": branch}, &resp); err != nil {
		return nil, err
	}

	nodes := resp.Repository.PullRequests.Nodes
	if len(nodes) == 0 {
		return nil, nil
	}
	pr := nodes[0].toPullRequest()
	return &pr, nil
}

func (g *GitHubAPI) GetPullRequestDiff(_ context.Context, number int) (string, error) {
	op := fmt.Sprintf("get diff for #%d", number)

	resp, err := g.diff.Request(http.MethodGet, g.repoPath("pulls/%d", number), nil)
	if err != nil {
		return "", providerError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", providerError(op, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", providerError(op, err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (g *GitHubAPI) OpenInBrowser(_ context.Context, number int) error {
	prURL := fmt.Sprintf("https://%s/%s/%s/pull/%d", g.host, g.owner, g.name, number)
	if err := g.browser.Browse(prURL); err != nil {
		return providerError(fmt.Sprintf("open #%d in browser", number), err)
	}
	return nil
}

func (g *GitHubAPI) AddLabel(_ context.Context, number int, label string) error {
	op := fmt.Sprintf("add label %q to #%d", label, number)
	body, err := jsonBody(map[string][]string{"labels": {label}})
	if err != nil {
		return providerError(op, err)
	}
	if err := g.rest.Post(g.repoPath("issues/%d/labels", number), body, nil); err != nil {
		return providerError(op, err)
	}
	return nil
}

func (g *GitHubAPI) RemoveLabel(_ context.Context, number int, label string) error {
	path := g.repoPath("issues/%d/labels/%s", number, url.PathEscape(label))
	if err := g.rest.Delete(path, nil); err != nil {
		return providerError(fmt.Sprintf("remove label %q from #%d", label, number), err)
	}
	return nil
}

func (g *GitHubAPI) EnsureLabel(_ context.Context, label Label) error {
	op := fmt.Sprintf("ensure label %q", label.Name)

	var existing []struct {
		Name string `json:"name"`
	}
	if err := g.rest.Get(g.repoPath("labels?per_page=100"), &existing); err != nil {
		return providerError(op, err)
	}
	for _, l := range existing {
		if strings.EqualFold(l.Name, label.Name) {
			g.log.Debug("Label already exists", "label", label.Name)
			return nil
		}
	}

	body, err := jsonBody(map[string]string{
		"name":        label.Name,
		"color":       label.Color,
		"description": label.Description,
	})
	if err != nil {
		return providerError(op, err)
	}
	if err := g.rest.Post(g.repoPath("labels"), body, nil); err != nil {
		return providerError(op, err)
	}
	g.log.Info("Created label", "label", label.Name)
	return nil
}

func (g *GitHubAPI) PostComment(_ context.Context, number int, body string) error {
	op := fmt.Sprintf("comment on #%d", number)
	payload, err := jsonBody(map[string]string{"body": body})
	if err != nil {
		return providerError(op, err)
	}
	if err := g.rest.Post(g.repoPath("issues/%d/comments", number), payload, nil); err != nil {
		return providerError(op, err)
	}
	return nil
}

func (g *GitHubAPI) ClosePullRequest(_ context.Context, number int) error {
	op := fmt.Sprintf("close #%d", number)
	payload, err := jsonBody(map[string]string{"state": "closed"})
	if err != nil {
		return providerError(op, err)
	}
	if err := g.rest.Patch(g.repoPath("pulls/%d", number), payload, nil); err != nil {
		return providerError(op, err)
	}
	return nil
}
