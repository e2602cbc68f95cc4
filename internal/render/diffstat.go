package render

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// FileStat is the line count summary for one file in a diff.
type FileStat struct {
	Name      string
	Additions int
	Deletions int
}

// ParseDiffStat summarizes a unified multi-file diff per file.
func ParseDiffStat(unified string) ([]FileStat, error) {
	if strings.TrimSpace(unified) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(unified + "\n"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	stats := make([]FileStat, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		st := fd.Stat()
		stats = append(stats, FileStat{
			Name:      fileName(fd),
			Additions: int(st.Added + st.Changed),
			Deletions: int(st.Deleted + st.Changed),
		})
	}
	return stats, nil
}

func fileName(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	for _, prefix := range []string{"a/", "b/"} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// DiffStat renders per-file counts followed by a totals line, similar to `git diff --stat`.
func DiffStat(stats []FileStat) string {
	if len(stats) == 0 {
		return "0 files changed"
	}

	width := 0
	for _, s := range stats {
		width = max(width, len(s.Name))
	}

	var b strings.Builder
	var added, deleted int
	for _, s := range stats {
		fmt.Fprintf(&b, " %-*s | +%d -%d\n", width, s.Name, s.Additions, s.Deletions)
		added += s.Additions
		deleted += s.Deletions
	}

	fmt.Fprintf(&b, " %s changed, %s(+), %s(-)",
		plural(len(stats), "file"), plural(added, "insertion"), plural(deleted, "deletion"))
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
