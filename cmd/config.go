package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/app"
	"github.com/jmcampanini/pullgod/internal/config"
	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/runner"
)

var configSourcesFlag bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the effective configuration as TOML: the defaults with every
pullgod.toml that applies to the current directory decoded on top, followed
by $PULLGOD_CONFIG when set.

Redirect the output to start a config file:

  pullgod config > pullgod.toml

With --sources, list the files that were applied instead.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configSourcesFlag, "sources", false, "List the config files that were applied, lowest priority first")
	rootCmd.AddCommand(configCmd)
}

// configLoader reads the config for the working directory. Tests replace it.
var configLoader = func(cmd *cobra.Command) (config.Loaded, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Loaded{}, fmt.Errorf("failed to get current directory: %w", err)
	}
	ctx := commandContext(cmd)
	g := git.New(false, cwd, runner.New(config.DefaultConfig().Git.Timeout))

	// Outside a repository only the user, directory and override files apply.
	worktreeRoot, err := g.GetWorktreeRoot(ctx)
	if err != nil {
		return config.Loaded{}, fmt.Errorf("git error: %w", err)
	}
	var mainWorktreePath string
	if worktreeRoot != "" {
		if mainWorktreePath, err = g.GetMainWorktreePath(ctx); err != nil {
			return config.Loaded{}, fmt.Errorf("failed to get main worktree path: %w", err)
		}
	}
	return app.LoadConfig(cwd, worktreeRoot, mainWorktreePath)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := configLoader(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !configSourcesFlag {
		if err := toml.NewEncoder(out).Encode(loaded.Config); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	}

	if len(loaded.Applied) == 0 {
		_, err = fmt.Fprintln(out, "No config files found, using defaults.")
		return err
	}
	for _, src := range loaded.Applied {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", src.Scope, src.Path); err != nil {
			return err
		}
	}
	return nil
}
