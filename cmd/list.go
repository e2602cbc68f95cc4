package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/app"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/render"
)

var (
	listCachedFlag      bool
	listFzfFlag         bool
	listLowPriorityFlag bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List open pull requests",
	Long: `List the open pull requests of the current repository in priority order.

Pull requests carrying the low priority label are hidden unless --low-priority is
given, in which case only they are shown. The cached list is used when GitHub
cannot be reached.

With --fzf, outputs tab-separated format suitable for fzf integration:
  <number>\t<searchable>\t<display>

Example with fzf:
  pullgod list --fzf | fzf --delimiter '\t' --with-nth 3 | cut -f1`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listCachedFlag, "cached", false, "Show the cached list without contacting GitHub")
	listCmd.Flags().BoolVar(&listFzfFlag, "fzf", false, "Output in fzf-compatible format")
	listCmd.Flags().BoolVar(&listLowPriorityFlag, "low-priority", false, "Show only low priority pull requests")
	rootCmd.AddCommand(listCmd)
}

type listOptions struct {
	fzf         bool
	lowPriority bool
	now         time.Time
}

func runList(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}
	opts := listOptions{fzf: listFzfFlag, lowPriority: listLowPriorityFlag, now: a.Now()}

	if listCachedFlag {
		ov, ok := a.CachedOverview(ctx)
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No cached pull requests.")
			return err
		}
		return outputOverview(cmd, ov, true, opts)
	}

	var (
		last     app.Overview
		rendered bool
		stale    bool
	)
	err = a.Revalidate(ctx, func(ov app.Overview, isStale bool) {
		last, stale, rendered = ov, isStale, true
	})
	if err != nil {
		if !rendered {
			return fmt.Errorf("failed to list pull requests: %w", err)
		}
		clog.Warn("Showing cached pull requests", "error", err)
	}
	return outputOverview(cmd, last, stale, opts)
}

func outputOverview(cmd *cobra.Command, ov app.Overview, stale bool, opts listOptions) error {
	prs := ov.PullRequests
	if opts.lowPriority {
		prs = ov.LowPriority
	}

	if opts.fzf {
		return outputListFzf(cmd, prs, ov)
	}

	if stale {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "(cached)")
	}
	if err := outputListTable(cmd, prs, ov, opts.now); err != nil {
		return err
	}
	if !opts.lowPriority && len(ov.LowPriority) > 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d low priority pull request(s) hidden, use --low-priority to show them.\n", len(ov.LowPriority))
		return err
	}
	return nil
}

func isCurrent(ov app.Overview, pr github.PullRequest) bool {
	return ov.Current != nil && ov.Current.Number == pr.Number
}

func behindMarker(ov app.Overview, pr github.PullRequest) string {
	if n := ov.Behind[pr.HeadRefName]; n > 0 {
		return "↓" + strconv.Itoa(n) // down arrow
	}
	return ""
}

// outputListTable renders a lipgloss table to stdout.
func outputListTable(cmd *cobra.Command, prs []github.PullRequest, ov app.Overview, now time.Time) error {
	if len(prs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No open pull requests found.")
		return err
	}

	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle := cellStyle.Foreground(gray)
	evenRowStyle := cellStyle.Foreground(lightGray)
	currentRowStyle := cellStyle.Foreground(purple).Bold(true)

	currentRow := -1
	rows := make([][]string, len(prs))
	for i, pr := range prs {
		marker := ""
		if isCurrent(ov, pr) {
			marker = "*"
			currentRow = i
		}
		rows[i] = []string{
			marker,
			strconv.Itoa(pr.Number),
			truncateString(pr.Title, 40),
			pr.Author,
			truncateString(pr.HeadRefName, 30),
			render.StatusIcon(pr.Status),
			strings.ToLower(pr.Mergeable),
			behindMarker(ov, pr),
			render.TimeAgo(pr.UpdatedAt, now),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == currentRow:
				return currentRowStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("", "#", "Title", "Author", "Branch", "CI", "Merge", "Behind", "Updated").
		Rows(rows...)

	_, err := fmt.Fprintln(cmd.OutOrStdout(), t)
	return err
}

// outputListFzf renders fzf-compatible TSV format.
// Format: <number>\t<searchable>\t<display>
func outputListFzf(cmd *cobra.Command, prs []github.PullRequest, ov app.Overview) error {
	for _, pr := range prs {
		searchable := sanitizeFzfField(strings.TrimSpace(fmt.Sprintf("%d %s %s %s %s",
			pr.Number,
			pr.Title,
			pr.HeadRefName,
			pr.Author,
			strings.Join(pr.Labels, " "),
		)))

		prefix := ""
		if isCurrent(ov, pr) {
			prefix = "* "
		}
		display := sanitizeFzfField(fmt.Sprintf("%s%s #%d %s [%s] %s",
			prefix,
			render.StatusIcon(pr.Status),
			pr.Number,
			pr.Title,
			pr.Author,
			pr.HeadRefName,
		))

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", pr.Number, searchable, display); err != nil {
			return err
		}
	}
	return nil
}

// sanitizeFzfField replaces tabs and newlines with spaces to prevent fzf parsing issues.
func sanitizeFzfField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

// truncateString truncates s to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
