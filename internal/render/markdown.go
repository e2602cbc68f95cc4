package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmcampanini/pullgod/internal/github"
)

// SummaryMarkdown renders a pull request as a markdown document with its diff.
func SummaryMarkdown(pr github.PullRequestDetail, diff string) string {
	return strings.Join([]string{
		fmt.Sprintf("# #%d %s", pr.Number, pr.Title),
		"",
		pr.Body,
		"",
		"```diff",
		strings.TrimRight(diff, "\n"),
		"```",
	}, "\n")
}

// Detail renders the fields shown by the view command.
func Detail(pr github.PullRequestDetail, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s\n", pr.Number, pr.Title)
	state := pr.State
	if pr.IsDraft {
		state += " (draft)"
	}
	fmt.Fprintf(&b, "%s wants to merge %s into %s\n", pr.Author, pr.HeadRefName, pr.BaseRefName)
	fmt.Fprintf(&b, "State: %s  Checks: %s %s  Mergeable: %s\n", state, StatusIcon(pr.Status), pr.Status, pr.Mergeable)
	fmt.Fprintf(&b, "Changes: +%d -%d in %d files\n", pr.Additions, pr.Deletions, pr.ChangedFiles)
	if !pr.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Updated: %s\n", TimeAgo(pr.UpdatedAt, now))
	}
	if len(pr.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(pr.Labels, ", "))
	}
	if pr.URL != "" {
		fmt.Fprintf(&b, "%s\n", pr.URL)
	}
	if body := strings.TrimSpace(pr.Body); body != "" {
		fmt.Fprintf(&b, "\n%s\n", body)
	}

	return b.String()
}

// StatusIcon returns a one-character marker for a check status.
func StatusIcon(s github.Status) string {
	switch s {
	case github.StatusSuccess:
		return "✓"
	case github.StatusFailure:
		return "✗"
	case github.StatusPending:
		return "●"
	default:
		return "?"
	}
}
