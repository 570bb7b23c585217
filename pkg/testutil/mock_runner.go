package testutil

import (
	"context"

	"github.com/arthur-debert/archup/pkg/runner"
	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock implementation of runner.Runner
type MockRunner struct {
	mock.Mock
}

// Run implements runner.Runner
func (m *MockRunner) Run(ctx context.Context, cmd runner.Command) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

// Output implements runner.Runner
func (m *MockRunner) Output(ctx context.Context, cmd runner.Command) (string, error) {
	args := m.Called(ctx, cmd)
	return args.String(0), args.Error(1)
}

// Argv matches a command by its full argument vector
func Argv(argv ...string) interface{} {
	return mock.MatchedBy(func(cmd runner.Command) bool {
		got := cmd.Argv()
		if len(got) != len(argv) {
			return false
		}
		for i := range got {
			if got[i] != argv[i] {
				return false
			}
		}
		return true
	})
}
