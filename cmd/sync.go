package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var syncOnceFlag bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep the pull request cache and current branch up to date",
	Long: `Refresh the cached pull request list every sync.interval and fast-forward the
current branch when it belongs to an open pull request, has no local changes or
unpushed commits, and is behind its upstream. Runs until interrupted.

With --once, runs a single cycle and prints what it did.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncOnceFlag, "once", false, "Run a single cycle and exit")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, ctx, err := loadApp(cmd)
	if err != nil {
		return err
	}
	syncer := a.Syncer()

	if syncOnceFlag {
		outcome := syncer.RunOnce(ctx)
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "sync: %s\n", outcome)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clog.Info("Syncing", "repo", a.Repo().String(), "interval", a.Config().Sync.Interval)
	syncer.Start(ctx)
	<-ctx.Done()
	syncer.Stop()
	return nil
}
