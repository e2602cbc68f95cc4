package app

import (
	"context"
	"strings"
	"time"

	"github.com/jmcampanini/pullgod/internal/github"
)

// LabelChange is one label added to or removed from a pull request.
type LabelChange struct {
	Added  bool
	Label  string
	Number int
}

func (a *App) AddLabel(ctx context.Context, number int, label string) error {
	return a.github.AddLabel(ctx, number, label)
}

func (a *App) RemoveLabel(ctx context.Context, number int, label string) error {
	return a.github.RemoveLabel(ctx, number, label)
}

// EnsureLabel creates label in the repository if it does not exist. The configured low
// priority label, matched case-insensitively, gets the configured color and description.
func (a *App) EnsureLabel(ctx context.Context, name string) error {
	label := github.Label{Name: name}
	if strings.EqualFold(name, a.cfg.GitHub.LowPriorityLabel) {
		label.Color = a.cfg.GitHub.LabelColor
		label.Description = a.cfg.GitHub.LabelDescription
	}
	return a.github.EnsureLabel(ctx, label)
}

// PriorityChanges computes the label edits that make exactly the pull requests in low carry
// the low priority label.
func (a *App) PriorityChanges(prs []github.PullRequest, low map[int]bool) []LabelChange {
	label := a.cfg.GitHub.LowPriorityLabel
	var changes []LabelChange
	for _, p := range prs {
		has := a.source.IsLowPriority(p)
		switch {
		case low[p.Number] && !has:
			changes = append(changes, LabelChange{Added: true, Label: label, Number: p.Number})
		case !low[p.Number] && has:
			changes = append(changes, LabelChange{Added: false, Label: label, Number: p.Number})
		}
	}
	return changes
}

// UpdatePriorities applies PriorityChanges one call at a time, pausing github.label_delay
// between calls. The label is created first when anything is added. It stops at the first
// failure and returns the changes applied so far. The cache is refreshed afterwards.
func (a *App) UpdatePriorities(ctx context.Context, prs []github.PullRequest, low map[int]bool) ([]LabelChange, error) {
	changes := a.PriorityChanges(prs, low)
	if len(changes) == 0 {
		return nil, nil
	}

	for _, c := range changes {
		if c.Added {
			if err := a.EnsureLabel(ctx, c.Label); err != nil {
				return nil, err
			}
			break
		}
	}

	applied := make([]LabelChange, 0, len(changes))
	for i, c := range changes {
		if i > 0 {
			a.pause(a.cfg.GitHub.LabelDelay)
		}

		var err error
		if c.Added {
			err = a.github.AddLabel(ctx, c.Number, c.Label)
		} else {
			err = a.github.RemoveLabel(ctx, c.Number, c.Label)
		}
		if err != nil {
			return applied, err
		}
		a.log.Debug("Updated priority", "number", c.Number, "label", c.Label, "added", c.Added)
		applied = append(applied, c)
	}

	if _, err := a.source.Refresh(ctx); err != nil {
		a.log.Debug("Failed to refresh after priority update", "error", err)
	}
	return applied, nil
}

func (a *App) pause(d time.Duration) {
	if d > 0 {
		a.sleep(d)
	}
}
