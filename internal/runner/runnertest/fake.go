// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmcampanini/pullgod/internal/runner"
)

// Call is one recorded invocation.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as "name arg1 arg2".
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

type response struct {
	output string
	err    error
}

// Fake answers commands from a table keyed by "name arg1 arg2".
// Unscripted commands fail with a *runner.ProcessError.
type Fake struct {
	mu        sync.Mutex
	calls     []Call
	prefixes  map[string]response
	responses map[string]response
}

var _ runner.Runner = &Fake{}

func New() *Fake {
	return &Fake{
		prefixes:  make(map[string]response),
		responses: make(map[string]response),
	}
}

// On scripts a successful response.
func (f *Fake) On(cmdline, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[cmdline] = response{output: output}
	return f
}

// OnPrefix scripts a successful response for any command line starting with prefix.
// Exact matches from On and Fail take precedence.
func (f *Fake) OnPrefix(prefix, output string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes[prefix] = response{output: output}
	return f
}

// Fail scripts a failing response with the given stderr.
func (f *Fake) Fail(cmdline, stderr string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, args, _ := strings.Cut(cmdline, " ")
	f.responses[cmdline] = response{err: &runner.ProcessError{
		Name:   name,
		Args:   strings.Fields(args),
		Stderr: stderr,
		Err:    errors.New("exit status 1"),
	}}
	return f
}

func (f *Fake) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: args}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	resp, ok := f.responses[call.String()]
	if !ok {
		for prefix, r := range f.prefixes {
			if strings.HasPrefix(call.String(), prefix) {
				resp, ok = r, true
				break
			}
		}
	}
	if !ok {
		return "", &runner.ProcessError{
			Name: name,
			Args: args,
			Err:  fmt.Errorf("unexpected command: %s", call.String()),
		}
	}
	return resp.output, resp.err
}

// Calls returns every recorded invocation as "name arg1 arg2".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}
