// Package app wires configuration, git, GitHub and the cache into the operations the
// commands expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/pullgod/internal/autosync"
	"github.com/jmcampanini/pullgod/internal/cache"
	"github.com/jmcampanini/pullgod/internal/checkout"
	"github.com/jmcampanini/pullgod/internal/config"
	"github.com/jmcampanini/pullgod/internal/git"
	"github.com/jmcampanini/pullgod/internal/github"
	"github.com/jmcampanini/pullgod/internal/pr"
	"github.com/jmcampanini/pullgod/internal/repo"
	"github.com/jmcampanini/pullgod/internal/runner"
)

// ErrNoCurrentPR is returned when an operation defaults to the current branch's pull
// request and there is none.
var ErrNoCurrentPR = errors.New("no open pull request for the current branch")

// Cache is the subset of the disk cache used by App.
type Cache interface {
	pr.Cache
	SetLastCheckedOut(number int, epochMillis int64) error
}

var _ Cache = &cache.Cache{}

// App is the per-command context: every dependency a command needs, built once.
type App struct {
	cache      Cache
	cfg        config.Config
	git        git.Git
	github     github.GitHub
	log        *clog.Logger
	now        func() time.Time
	repo       repo.OwnerRepo
	reconciler *checkout.Reconciler
	sleep      func(time.Duration)
	source     *pr.Source
}

// New assembles an App from already constructed collaborators.
func New(cfg config.Config, g git.Git, gh github.GitHub, c Cache, ownerRepo repo.OwnerRepo) *App {
	return &App{
		cache:      c,
		cfg:        cfg,
		git:        g,
		github:     gh,
		log:        clog.Default().WithPrefix("app"),
		now:        time.Now,
		repo:       ownerRepo,
		reconciler: checkout.NewReconciler(g, ownerRepo.Owner),
		sleep:      time.Sleep,
		source: pr.NewSource(gh, g, c, pr.Options{
			CacheKey:         cfg.Cache.SourceKey,
			Limit:            cfg.GitHub.Limit,
			LowPriorityLabel: cfg.GitHub.LowPriorityLabel,
		}),
	}
}

// LoadOptions controls how Load builds an App from the environment.
type LoadOptions struct {
	// Dir is the working directory. Empty means the process working directory.
	Dir    string
	DryRun bool
}

// Load discovers the repository at opts.Dir, reads configuration and builds an App.
func Load(ctx context.Context, opts LoadOptions) (*App, error) {
	dir := opts.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}

	bootstrap := git.New(opts.DryRun, dir, runner.New(config.DefaultConfig().Git.Timeout))

	worktreeRoot, err := bootstrap.GetWorktreeRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("git error: %w", err)
	}
	if worktreeRoot == "" {
		return nil, &repo.RepositoryError{Dir: dir, Err: repo.ErrNotRepository}
	}

	mainWorktreePath, err := bootstrap.GetMainWorktreePath(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get main worktree path: %w", err)
	}

	loaded, err := LoadConfig(dir, worktreeRoot, mainWorktreePath)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	r := runner.New(cfg.Git.Timeout)
	gitClient := git.New(opts.DryRun, dir, r)

	locator := repo.NewLocator(dir, cfg.GitHub.Host, gitClient,
		git.FallbackRemotes{git.NewGoGitRemotes(dir), gitClient})
	ownerRepo, err := locator.ResolveOwnerRepo(ctx)
	if err != nil {
		return nil, err
	}

	var gh github.GitHub
	switch cfg.GitHub.Backend {
	case config.BackendAPI:
		api, err := github.NewAPI(cfg.GitHub.Host, ownerRepo.Owner, ownerRepo.Name)
		if err != nil {
			return nil, err
		}
		gh = api
	default:
		gh = github.NewCli(dir, cfg.GitHub.Host, r)
	}

	cacheDir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	c := cache.New(cacheDir, worktreeRoot)

	return New(cfg, gitClient, gh, c, ownerRepo), nil
}

// LoadConfig reads and merges the pullgod.toml files that apply to dir.
// worktreeRoot and mainWorktreePath are empty outside a repository.
func LoadConfig(dir, worktreeRoot, mainWorktreePath string) (config.Loaded, error) {
	loc, err := config.DefaultLocations(dir, worktreeRoot, mainWorktreePath)
	if err != nil {
		return config.Loaded{}, err
	}

	loaded, err := config.NewLoader().Load(loc.Sources())
	if err != nil {
		return config.Loaded{}, fmt.Errorf("failed to load config: %w", err)
	}
	clog.Debug("Loaded config", "paths", loaded.Paths())
	return loaded, nil
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) Repo() repo.OwnerRepo {
	return a.repo
}

func (a *App) Source() *pr.Source {
	return a.source
}

// Syncer returns a background syncer using the configured interval.
func (a *App) Syncer() *autosync.Syncer {
	return autosync.New(a.git, a.source, a.cfg.Sync.Interval)
}

// Now returns the current time as seen by the app.
func (a *App) Now() time.Time {
	return a.now()
}
