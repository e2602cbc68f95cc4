package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/render"
)

var (
	viewFzfFlag  bool
	diffStatFlag bool
)

var viewCmd = &cobra.Command{
	Use:   "view [number]",
	Short: "Show pull request details",
	Long: `Show the details of a pull request: author, branches, CI status, size, labels
and body. Defaults to the pull request of the current branch.

With --fzf, errors are printed to stdout instead of returning an error code,
making it suitable for use in fzf preview panes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

var diffCmd = &cobra.Command{
	Use:   "diff [number]",
	Short: "Show a pull request's diff",
	Long: `Print the unified diff of a pull request, or with --stat a per-file summary.
Defaults to the pull request of the current branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

func init() {
	viewCmd.Flags().BoolVar(&viewFzfFlag, "fzf", false, "Print errors to stdout instead of returning error (for fzf preview)")
	diffCmd.Flags().BoolVar(&diffStatFlag, "stat", false, "Show a per-file summary instead of the diff")
	rootCmd.AddCommand(viewCmd, diffCmd)
}

// handlePreviewError prints err to stdout in fzf mode and swallows it.
func handlePreviewError(cmd *cobra.Command, err error) error {
	if viewFzfFlag {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
		return nil
	}
	return err
}

func runView(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return handlePreviewError(cmd, err)
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return handlePreviewError(cmd, err)
	}

	detail, err := a.View(ctx, number)
	if err != nil {
		return handlePreviewError(cmd, fmt.Errorf("failed to get pull request: %w", err))
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), render.Detail(detail, a.Now()))
	return err
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return err
	}

	if diffStatFlag {
		stats, err := a.DiffStat(ctx, number)
		if err != nil {
			return fmt.Errorf("failed to get diff: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), render.DiffStat(stats))
		return err
	}

	diff, err := a.Diff(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get diff: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), diff)
	return err
}
