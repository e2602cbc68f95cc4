package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/shell"
)

var initCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Generate shell integration functions",
	Long: `Init outputs a pgo shell function that checks out a pull request. Without
arguments pgo lets you pick one with fzf, previewed with "pullgod view".

Add to your shell config:
  Fish:  pullgod init fish | source
  Zsh:   eval "$(pullgod init zsh)"
  Bash:  eval "$(pullgod init bash)"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: shell.Shells,
	RunE:      runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	output, err := shell.NewFunctionGenerator().Generate(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), output)
	return err
}
