package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/archup/pkg/runner"
)

// FakeRunner implements runner.Runner by recording every command.
// Results are looked up by the command's joined argv; a prefix match is
// used when no exact entry exists.
type FakeRunner struct {
	mu sync.Mutex

	// Calls holds every command passed to Run, in order
	Calls []runner.Command
	// Queries holds every command passed to Output, in order
	Queries []runner.Command

	// Errors maps an argv line (or prefix) to the error Run returns
	Errors map[string]error
	// Outputs maps an argv line (or prefix) to Output's result
	Outputs map[string]string
	// RunFunc, when set, is called for every Run after recording
	RunFunc func(ctx context.Context, cmd runner.Command) error
}

// NewFakeRunner creates an empty FakeRunner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Errors:  make(map[string]error),
		Outputs: make(map[string]string),
	}
}

// FailOn makes Run return err for commands matching line
func (f *FakeRunner) FailOn(line string, err error) *FakeRunner {
	f.Errors[line] = err
	return f
}

// Respond makes Output return out for commands matching line
func (f *FakeRunner) Respond(line, out string) *FakeRunner {
	f.Outputs[line] = out
	return f
}

// Run implements runner.Runner
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Command) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()

	if f.RunFunc != nil {
		if err := f.RunFunc(ctx, cmd); err != nil {
			return err
		}
	}
	if err, ok := lookup(f.Errors, cmd); ok {
		return err
	}
	return nil
}

// Output implements runner.Runner
func (f *FakeRunner) Output(ctx context.Context, cmd runner.Command) (string, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, cmd)
	f.mu.Unlock()

	if err, ok := lookup(f.Errors, cmd); ok {
		return "", err
	}
	out, _ := lookup(f.Outputs, cmd)
	return out, nil
}

// Lines returns the recorded Run calls as argv lines
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = line(c)
	}
	return lines
}

// QueryLines returns the recorded Output calls as argv lines
func (f *FakeRunner) QueryLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Queries))
	for i, c := range f.Queries {
		lines[i] = line(c)
	}
	return lines
}

func line(cmd runner.Command) string {
	return strings.Join(cmd.Argv(), " ")
}

func lookup[T any](m map[string]T, cmd runner.Command) (T, bool) {
	l := line(cmd)
	if v, ok := m[l]; ok {
		return v, true
	}
	var best string
	for prefix := range m {
		if strings.HasPrefix(l, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return m[best], true
	}
	var zero T
	return zero, false
}
