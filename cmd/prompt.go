package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmcampanini/pullgod/internal/github"
)

func huhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("99"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func runForm(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithTheme(huhTheme()).
		WithShowHelp(false).
		Run()
}

// Interactive prompts. Tests replace these.
var (
	confirmPrompt = func(title, description string) (bool, error) {
		var ok bool
		err := runForm(huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&ok))
		return ok, err
	}

	textPrompt = func(title string) (string, error) {
		var body string
		err := runForm(huh.NewText().
			Title(title).
			CharLimit(65536).
			Value(&body))
		return body, err
	}

	lowPriorityPrompt = func(prs []github.PullRequest, isLow func(github.PullRequest) bool) ([]int, error) {
		var selected []int
		options := make([]huh.Option[int], len(prs))
		for i, p := range prs {
			label := fmt.Sprintf("#%d %s", p.Number, truncateString(p.Title, 60))
			options[i] = huh.NewOption(label, p.Number).Selected(isLow(p))
			if isLow(p) {
				selected = append(selected, p.Number)
			}
		}

		err := runForm(huh.NewMultiSelect[int]().
			Title("Low priority pull requests").
			Value(&selected).
			Options(options...))
		return selected, err
	}
)
