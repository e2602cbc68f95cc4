package git

import (
	"strconv"
	"strings"
)

// branchFormat prints one tab-separated line per branch:
//
//	<name> TAB <"*" if checked out> TAB <upstream> TAB <tracking>
//
// where tracking is e.g. "ahead 2, behind 1", "behind 3", "gone" or empty.
// Ref names cannot contain tabs.
const branchFormat = "%(refname:short)%09%(HEAD)%09%(upstream:short)%09%(upstream:track,nobracket)"

func parseBranches(output string) []LocalBranch {
	var branches []LocalBranch
	for _, line := range strings.Split(output, "\n") {
		if b, ok := parseBranchLine(line); ok {
			branches = append(branches, b)
		}
	}
	return branches
}

func parseBranchLine(line string) (LocalBranch, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] == "" {
		return LocalBranch{}, false
	}
	for len(fields) < 4 {
		fields = append(fields, "")
	}

	name, head, upstream, track := fields[0], fields[1], fields[2], fields[3]
	ahead, behind, gone := parseTracking(track)
	return NewLocalBranch(name, upstream, strings.TrimSpace(head) == "*", gone, ahead, behind), true
}

// parseTracking reads the counts out of a tracking annotation. Unknown parts are ignored.
func parseTracking(track string) (ahead, behind int, gone bool) {
	track = strings.TrimSpace(track)
	if track == "gone" {
		return 0, 0, true
	}
	for _, part := range strings.Split(track, ",") {
		kind, count, ok := strings.Cut(strings.TrimSpace(part), " ")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			continue
		}
		switch kind {
		case "ahead":
			ahead = n
		case "behind":
			behind = n
		}
	}
	return ahead, behind, false
}

// splitUpstream splits "origin/feature/x" into ("origin", "feature/x").
func splitUpstream(upstream string) (remote, branch string) {
	remote, branch, ok := strings.Cut(upstream, "/")
	if !ok {
		return "", upstream
	}
	return remote, branch
}
