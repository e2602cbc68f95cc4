package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// FileName is the name looked up in every config location.
const FileName = "pullgod.toml"

// EnvOverride names a config file applied after every discovered one.
const EnvOverride = "PULLGOD_CONFIG"

// Scope says where a config file was found.
type Scope string

const (
	ScopeUser       Scope = "user"
	ScopeParent     Scope = "parent"
	ScopeRepository Scope = "repository"
	ScopeWorktree   Scope = "worktree"
	ScopeDirectory  Scope = "directory"
	ScopeOverride   Scope = "override"
)

// Source is a candidate config file.
type Source struct {
	Path  string
	Scope Scope
}

// Locations are the directories searched for pullgod.toml. Empty fields are skipped.
type Locations struct {
	Cwd           string
	Home          string
	MainWorktree  string
	Override      string // full file path, not a directory
	UserConfigDir string
	Worktree      string
}

// DefaultLocations fills in the home directory, the user config directory and
// $PULLGOD_CONFIG around the repository paths.
func DefaultLocations(cwd, worktree, mainWorktree string) (Locations, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Locations{}, fmt.Errorf("failed to get user home directory: %w", err)
	}

	loc := Locations{
		Cwd:          cwd,
		Home:         home,
		MainWorktree: mainWorktree,
		Override:     os.Getenv(EnvOverride),
		Worktree:     worktree,
	}
	if dir, err := os.UserConfigDir(); err == nil {
		loc.UserConfigDir = filepath.Join(dir, "pullgod")
	}
	return loc, nil
}

// Sources lists candidate files from lowest to highest priority:
//  1. the user config directory (~/.config/pullgod)
//  2. every directory from home down to the main worktree's parent
//  3. the main worktree
//  4. the current worktree, for linked worktrees
//  5. the working directory
//  6. the override file
//
// A file reachable from several locations keeps its lowest-priority position.
func (l Locations) Sources() []Source {
	var sources []Source
	seen := make(map[string]bool)

	add := func(path string, scope Scope) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		sources = append(sources, Source{Path: path, Scope: scope})
	}
	addDir := func(dir string, scope Scope) {
		if dir != "" {
			add(filepath.Join(dir, FileName), scope)
		}
	}

	addDir(l.UserConfigDir, ScopeUser)
	for _, dir := range parentsBelow(l.Home, l.MainWorktree) {
		addDir(dir, ScopeParent)
	}
	addDir(l.MainWorktree, ScopeRepository)
	addDir(l.Worktree, ScopeWorktree)
	addDir(l.Cwd, ScopeDirectory)
	add(l.Override, ScopeOverride)

	return sources
}

// parentsBelow returns root and every directory between root and dir, outermost
// first. It returns nothing when dir is not inside root.
func parentsBelow(root, dir string) []string {
	if root == "" || dir == "" {
		return nil
	}
	rel, err := filepath.Rel(root, filepath.Dir(dir))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}

	dirs := []string{root}
	if rel == "." {
		return dirs
	}
	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		dirs = append(dirs, current)
	}
	return dirs
}
