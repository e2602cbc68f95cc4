package cmd

import (
	"context"
	"fmt"
	"strconv"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/pullgod/internal/app"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var (
	dryRunFlag  bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "pullgod",
	Short: "Review and check out GitHub pull requests from the terminal",
	Long: `pullgod lists the open pull requests of the current repository, checks them out
safely (including pull requests from forks), and keeps the checked out branch up
to date in the background.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			clog.SetLevel(clog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Log mutating git commands instead of running them")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// appLoader builds the App for a command. Tests replace it.
var appLoader = func(ctx context.Context) (*app.App, error) {
	return app.Load(ctx, app.LoadOptions{DryRun: dryRunFlag})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadApp(cmd *cobra.Command) (*app.App, context.Context, error) {
	ctx := commandContext(cmd)
	a, err := appLoader(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, ctx, nil
}

func parsePRNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid PR number: %s", arg)
	}
	return n, nil
}

// resolvePRNumber uses the first argument when present, otherwise the pull request of the
// current branch.
func resolvePRNumber(ctx context.Context, a *app.App, args []string) (int, error) {
	if len(args) > 0 {
		return parsePRNumber(args[0])
	}
	return a.ResolveNumber(ctx, 0)
}
