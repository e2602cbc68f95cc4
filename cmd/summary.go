package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [number]",
	Short: "Print a markdown summary of a pull request",
	Long: `Print a markdown document with the pull request's title, body and diff, ready
to paste into an editor or a chat. Defaults to the pull request of the current
branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return err
	}

	md, err := a.Summary(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to summarize pull request: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), md)
	return err
}
