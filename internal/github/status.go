package github

import (
	"strings"

	"github.com/tidwall/gjson"
)

var (
	failingStates = map[string]bool{
		"FAILURE":         true,
		"ERROR":           true,
		"CANCELLED":       true,
		"TIMED_OUT":       true,
		"ACTION_REQUIRED": true,
		"STARTUP_FAILURE": true,
	}
	pendingStates = map[string]bool{
		"PENDING":     true,
		"IN_PROGRESS": true,
		"QUEUED":      true,
		"WAITING":     true,
		"EXPECTED":    true,
		"REQUESTED":   true,
	}
	successStates = map[string]bool{
		"SUCCESS": true,
		"NEUTRAL": true,
		"SKIPPED": true,
	}
)

// FoldStatus reduces a status check rollup to a single Status.
//
// The rollup is either a collection of checks (gh CLI) or an object with an
// aggregate "state" and a "contexts.nodes" collection (GraphQL). Each check
// contributes the first non-empty of conclusion, state and status.
// Any failing check wins, then any pending check, then any successful one.
func FoldStatus(rollup gjson.Result) Status {
	var states []string

	switch {
	case rollup.IsArray():
		states = checkStates(rollup)
	case rollup.IsObject():
		if s := rollup.Get("state").String(); s != "" {
			states = append(states, s)
		}
		contexts := rollup.Get("contexts.nodes")
		if !contexts.Exists() {
			contexts = rollup.Get("contexts")
		}
		states = append(states, checkStates(contexts)...)
	}

	return foldStates(states)
}

// FoldStatusJSON is FoldStatus over raw JSON.
func FoldStatusJSON(raw []byte) Status {
	if len(raw) == 0 {
		return StatusUnknown
	}
	return FoldStatus(gjson.ParseBytes(raw))
}

func checkStates(checks gjson.Result) []string {
	if !checks.IsArray() {
		return nil
	}
	var states []string
	checks.ForEach(func(_, check gjson.Result) bool {
		for _, field := range []string{"conclusion", "state", "status"} {
			if s := check.Get(field).String(); s != "" {
				states = append(states, s)
				break
			}
		}
		return true
	})
	return states
}

func foldStates(states []string) Status {
	var pending, success bool
	for _, s := range states {
		s = strings.ToUpper(s)
		switch {
		case failingStates[s]:
			return StatusFailure
		case pendingStates[s]:
			pending = true
		case successStates[s]:
			success = true
		}
	}
	switch {
	case pending:
		return StatusPending
	case success:
		return StatusSuccess
	default:
		return StatusUnknown
	}
}
