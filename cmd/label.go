package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage pull request labels",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <number> <label>",
	Short: "Add a label to a pull request",
	Args:  cobra.ExactArgs(2),
	RunE:  runLabelAdd,
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <number> <label>",
	Short: "Remove a label from a pull request",
	Args:  cobra.ExactArgs(2),
	RunE:  runLabelRemove,
}

var labelEnsureCmd = &cobra.Command{
	Use:   "ensure [label]",
	Short: "Create a label in the repository if it does not exist",
	Long: `Create a label in the repository if it does not exist. Defaults to the low
priority label, which is created with the configured color and description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLabelEnsure,
}

func init() {
	labelCmd.AddCommand(labelAddCmd, labelRemoveCmd, labelEnsureCmd)
	rootCmd.AddCommand(labelCmd)
}

func runLabelAdd(cmd *cobra.Command, args []string) error {
	number, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	if err := a.AddLabel(ctx, number, args[1]); err != nil {
		return fmt.Errorf("failed to add label: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to #%d\n", args[1], number)
	return err
}

func runLabelRemove(cmd *cobra.Command, args []string) error {
	number, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	if err := a.RemoveLabel(ctx, number, args[1]); err != nil {
		return fmt.Errorf("failed to remove label: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from #%d\n", args[1], number)
	return err
}

func runLabelEnsure(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	name := a.Config().GitHub.LowPriorityLabel
	if len(args) > 0 {
		name = args[0]
	}
	if err := a.EnsureLabel(ctx, name); err != nil {
		return fmt.Errorf("failed to ensure label: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Label %s is available\n", name)
	return err
}
