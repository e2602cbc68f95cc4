package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Choose which pull requests are low priority",
	Long: `Pick the low priority pull requests from a list of all open pull requests.
The low priority label is added to the selected ones and removed from the
others, one request at a time with github.label_delay between them. Low
priority pull requests sort last and are hidden from "pullgod list".`,
	Args: cobra.NoArgs,
	RunE: runPriority,
}

func init() {
	rootCmd.AddCommand(priorityCmd)
}

func runPriority(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ov, err := a.Overview(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pull requests: %w", err)
	}
	prs := slices.Concat(ov.PullRequests, ov.LowPriority)
	if len(prs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No open pull requests found.")
		return err
	}

	selected, err := lowPriorityPrompt(prs, a.Source().IsLowPriority)
	if err != nil {
		return err
	}
	low := make(map[int]bool, len(selected))
	for _, n := range selected {
		low[n] = true
	}

	applied, err := a.UpdatePriorities(ctx, prs, low)
	for _, c := range applied {
		verb := "Removed"
		if c.Added {
			verb = "Added"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s on #%d\n", verb, c.Label, c.Number)
	}
	if err != nil {
		return fmt.Errorf("failed to update priorities: %w", err)
	}
	if len(applied) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return err
	}
	return nil
}
