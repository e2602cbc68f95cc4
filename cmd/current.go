package cmd

import (
	"fmt"
	"slices"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/render"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the pull request of the current branch",
	Args:  cobra.NoArgs,
	RunE:  runCurrent,
}

var behindCmd = &cobra.Command{
	Use:   "behind",
	Short: "List local branches that are behind their upstream",
	Long: `List local branches that are behind their upstream, one per line as
<branch>\t<commits behind>. Branches that are up to date are omitted. Counts are
as of the last fetch.`,
	Args: cobra.NoArgs,
	RunE: runBehind,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the current branch and open pull requests",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "List open pull requests that have a local branch",
	Args:  cobra.NoArgs,
	RunE:  runLocal,
}

func init() {
	rootCmd.AddCommand(currentCmd, behindCmd, statusCmd, localCmd)
}

func runCurrent(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	current, err := a.Current(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "#%d %s %s [%s] %s\n",
		current.Number, render.StatusIcon(current.Status), current.Title, current.Author, current.HeadRefName)
	return err
}

func runBehind(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	counts, err := a.BehindCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read branches: %w", err)
	}

	branches := make([]string, 0, len(counts))
	for b := range counts {
		branches = append(branches, b)
	}
	slices.Sort(branches)

	for _, b := range branches {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", b, counts[b]); err != nil {
			return err
		}
	}
	return nil
}

func runLocal(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	local, err := a.LocalPullRequests(ctx)
	if err != nil {
		return err
	}
	if len(local) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No open pull requests have a local branch.")
		return err
	}

	table := uitable.New()
	table.Separator = " "
	for _, m := range local {
		marker := " "
		if m.IsCheckedOut {
			marker = "*"
		}
		behind := ""
		if m.Behind > 0 {
			behind = fmt.Sprintf("↓%d", m.Behind)
		}
		table.AddRow(marker, fmt.Sprintf("#%d", m.PR.Number), m.PR.HeadRefName, behind, truncateString(m.PR.Title, 50))
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ov, err := a.Overview(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}

	table := uitable.New()
	table.Separator = " "
	table.AddRow("Repository:", a.Repo())
	table.AddRow("Branch:", ov.CurrentBranch)
	if ov.Current != nil {
		table.AddRow("Pull request:", fmt.Sprintf("#%d %s %s", ov.Current.Number, render.StatusIcon(ov.Current.Status), ov.Current.Title))
	} else {
		table.AddRow("Pull request:", "none")
	}
	if n := ov.Behind[ov.CurrentBranch]; n > 0 {
		table.AddRow("Behind upstream:", n)
	}
	table.AddRow("Open pull requests:", fmt.Sprintf("%d (%d low priority)",
		len(ov.PullRequests)+len(ov.LowPriority), len(ov.LowPriority)))

	_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
	return err
}
