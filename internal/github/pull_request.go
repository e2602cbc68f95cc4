package github

import (
	"strconv"
	"strings"
	"time"
)

// Status is the combined CI state of a pull request's head commit.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusPending Status = "PENDING"
	StatusUnknown Status = "UNKNOWN"
)

func (s Status) String() string {
	return string(s)
}

type HeadRepository struct {
	URL   string `json:"url"`
	Owner string `json:"owner"`
}

// CloneURL returns the URL used when adding the head repository as a remote.
func (h HeadRepository) CloneURL() string {
	return strings.TrimSuffix(h.URL, "/") + ".git"
}

type PullRequest struct {
	ID             string          `json:"id"`
	Number         int             `json:"number"`
	Title          string          `json:"title"`
	Author         string          `json:"author"`
	HeadRefName    string          `json:"headRefName"`
	BaseRefName    string          `json:"baseRefName"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	CreatedAt      time.Time       `json:"createdAt"`
	URL            string          `json:"url"`
	Status         Status          `json:"status,omitempty"`
	Mergeable      string          `json:"mergeable,omitempty"`
	HeadRepository *HeadRepository `json:"headRepository,omitempty"`
	Labels         []string        `json:"labels,omitempty"`
}

// NewPullRequest returns a PullRequest whose ID is derived from number.
func NewPullRequest(number int, title, author, headRefName string) PullRequest {
	return PullRequest{
		ID:          strconv.Itoa(number),
		Number:      number,
		Title:       title,
		Author:      author,
		HeadRefName: headRefName,
		Status:      StatusUnknown,
	}
}

func (pr PullRequest) HasLabel(name string) bool {
	for _, l := range pr.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// IsFork reports whether the head repository belongs to someone other than owner.
func (pr PullRequest) IsFork(owner string) bool {
	if pr.HeadRepository == nil || pr.HeadRepository.Owner == "" {
		return false
	}
	return !strings.EqualFold(pr.HeadRepository.Owner, owner)
}

// PullRequestDetail is a PullRequest plus the fields shown by `view`.
type PullRequestDetail struct {
	PullRequest
	Additions    int    `json:"additions"`
	Body         string `json:"body"`
	ChangedFiles int    `json:"changedFiles"`
	Deletions    int    `json:"deletions"`
	IsDraft      bool   `json:"isDraft"`
	State        string `json:"state"`
}

type Label struct {
	Name        string
	Color       string
	Description string
}
