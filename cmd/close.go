package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeYesFlag bool

var closeCmd = &cobra.Command{
	Use:   "close [number]",
	Short: "Close a pull request",
	Long: `Close a pull request without merging it. Asks for confirmation unless --yes is
given. Defaults to the pull request of the current branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClose,
}

func init() {
	closeCmd.Flags().BoolVarP(&closeYesFlag, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return err
	}

	if !closeYesFlag {
		ok, err := confirmPrompt(fmt.Sprintf("Close pull request #%d?", number), "The branch is left untouched.")
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return err
		}
	}

	if err := a.Close(ctx, number); err != nil {
		return fmt.Errorf("failed to close pull request: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Closed #%d\n", number)
	return err
}
