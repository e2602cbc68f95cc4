package cmd

import (
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [number]",
	Short: "Open a pull request in the browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	number, err := resolvePRNumber(ctx, a, args)
	if err != nil {
		return err
	}
	return a.Browse(ctx, number)
}
