package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/checkout"
)

var checkoutCmd = &cobra.Command{
	Use:     "checkout <number>",
	Aliases: []string{"co"},
	Short:   "Check out a pull request's branch",
	Long: `Check out the head branch of a pull request.

A local branch with commits that are not on its upstream (or with no upstream at
all) is switched to without fetching. Otherwise the branch is fetched and pulled,
or created from the remote branch. Pull requests from forks are fetched from a
remote named after the fork owner, which is added when missing.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	number, err := parsePRNumber(args[0])
	if err != nil {
		return err
	}

	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}

	result, err := a.Checkout(ctx, number)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), describeCheckout(result))
	return err
}

func describeCheckout(r checkout.Result) string {
	switch {
	case r.LocalOnly:
		return fmt.Sprintf("Switched to %s (local commits kept, nothing fetched)", r.Branch)
	case r.Created && r.RemoteAdded:
		return fmt.Sprintf("Added remote %s and created %s tracking %s/%s", r.Remote, r.Branch, r.Remote, r.Branch)
	case r.Created:
		return fmt.Sprintf("Created %s tracking %s/%s", r.Branch, r.Remote, r.Branch)
	case r.RemoteAdded:
		return fmt.Sprintf("Added remote %s, switched to %s and pulled", r.Remote, r.Branch)
	default:
		return fmt.Sprintf("Switched to %s and pulled from %s", r.Branch, r.Remote)
	}
}
