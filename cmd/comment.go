package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commentBodyFlag string

var commentCmd = &cobra.Command{
	Use:   "comment [number]",
	Short: "Comment on a pull request",
	Long: `Post a comment on a pull request. Without --body a text prompt is shown.
Defaults to the pull request of the current branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComment,
}

func init() {
	commentCmd.Flags().StringVarP(&commentBodyFlag, "body", "b", "", "Comment text")
	rootCmd.AddCommand(commentCmd)
}

func runComment(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return err
	}

	body := commentBodyFlag
	if body == "" {
		body, err = textPrompt(fmt.Sprintf("Comment on #%d", number))
		if err != nil {
			return err
		}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Empty comment, nothing posted.")
		return err
	}

	if err := a.Comment(ctx, number, body); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Commented on #%d\n", number)
	return err
}
