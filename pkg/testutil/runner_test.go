package testutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arthur-debert/archup/pkg/runner"
	"github.com/arthur-debert/archup/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeRunner_RecordsAndScripts(t *testing.T) {
	boom := errors.New("boom")
	f := testutil.NewFakeRunner().
		FailOn("pacman -S ", boom).
		Respond("git -C /d config --get remote.origin.url", "https://x/y.git")

	require.NoError(t, f.Run(context.Background(), runner.Cmd("pacman", "-Syu", "--noconfirm")))
	assert.ErrorIs(t, f.Run(context.Background(), runner.Cmd("pacman", "-S", "git")), boom)

	out, err := f.Output(context.Background(), runner.Cmd("git", "-C", "/d", "config", "--get", "remote.origin.url"))
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.git", out)

	assert.Equal(t, []string{"pacman -Syu --noconfirm", "pacman -S git"}, f.Lines())
	assert.Equal(t, []string{"git -C /d config --get remote.origin.url"}, f.QueryLines())
}

func TestMockRunner_Argv(t *testing.T) {
	m := &testutil.MockRunner{}
	m.On("Run", context.Background(), testutil.Argv("chsh", "-s", "/bin/zsh", "ana")).Return(nil).Once()

	require.NoError(t, m.Run(context.Background(), runner.Cmd("chsh", "-s", "/bin/zsh", "ana")))
	m.AssertExpectations(t)
}
