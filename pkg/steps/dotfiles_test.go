// pkg/steps/dotfiles_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Filesystem (t.TempDir), FakeRunner
// PURPOSE: Test the clone-or-skip policy and remove-then-symlink provisioning

package steps_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/arthur-debert/archup/pkg/steps"
	"github.com/arthur-debert/archup/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dotfilesRepo = "https://github.com/armando-rios/dotfiles.git"

func dotfilesStep(t *testing.T, h *testutil.HomeEnv, fake *testutil.FakeRunner, name string, mutate ...func(*steps.Deps)) func() error {
	t.Helper()
	deps := steps.Deps{
		Config:  config.Default(),
		Runner:  fake,
		FS:      filesystem.NewOS(),
		EUID:    1000,
		Account: paths.Account{Username: "ana", HomeDir: h.Home},
	}
	for _, m := range mutate {
		m(&deps)
	}
	step := find(t, steps.Catalog(deps), name)
	return func() error { return step.Action(context.Background()) }
}

func TestCloneDotfiles(t *testing.T) {
	t.Run("missing destination clones", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		fake := testutil.NewFakeRunner()

		require.NoError(t, dotfilesStep(t, h, fake, steps.CloneDotfiles)())
		assert.Equal(t, []string{"git clone " + dotfilesRepo + " " + h.Path(".dotfiles")}, fake.Lines())
	})

	t.Run("empty destination clones", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.Mkdir(".dotfiles")
		fake := testutil.NewFakeRunner()

		require.NoError(t, dotfilesStep(t, h, fake, steps.CloneDotfiles)())
		assert.Len(t, fake.Calls, 1)
	})

	t.Run("matching checkout is skipped", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.Repo(".dotfiles").File(".zshrc", "export EDITOR=nvim\n")
		fake := testutil.NewFakeRunner().
			Respond("git -C "+h.Path(".dotfiles")+" config --get remote.origin.url", "https://github.com/armando-rios/dotfiles")

		require.NoError(t, dotfilesStep(t, h, fake, steps.CloneDotfiles)())
		assert.Empty(t, fake.Calls)
		assert.Len(t, fake.Queries, 1)
	})

	t.Run("matching checkout is queried as the target account", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.Repo(".dotfiles").File(".zshrc", "")
		query := "sudo -u ana -H git -C " + h.Path(".dotfiles") + " config --get remote.origin.url"
		fake := testutil.NewFakeRunner().Respond(query, dotfilesRepo)
		asRoot := func(d *steps.Deps) {
			d.EUID = 0
			d.Account.ViaSudo = true
		}

		require.NoError(t, dotfilesStep(t, h, fake, steps.CloneDotfiles, asRoot)())
		assert.Empty(t, fake.Calls)
		assert.Equal(t, []string{query}, fake.QueryLines())
	})

	t.Run("other checkout conflicts", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.Repo(".dotfiles").File(".zshrc", "")
		fake := testutil.NewFakeRunner().
			Respond("git -C "+h.Path(".dotfiles")+" config --get remote.origin.url", "https://example.com/other.git")

		err := dotfilesStep(t, h, fake, steps.CloneDotfiles)()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
		assert.Empty(t, fake.Calls)
	})

	t.Run("plain directory conflicts", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.WriteFile(".dotfiles/notes.txt", "mine")
		fake := testutil.NewFakeRunner()

		err := dotfilesStep(t, h, fake, steps.CloneDotfiles)()
		assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
		assert.Empty(t, fake.Calls)
	})

	t.Run("file at destination conflicts", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		h.WriteFile(".dotfiles", "oops")

		err := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.CloneDotfiles)()
		assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
	})
}

func TestCloneDotfiles_OriginMatching(t *testing.T) {
	tests := []struct {
		origin string
		same   bool
	}{
		{"https://github.com/armando-rios/dotfiles.git", true},
		{"https://github.com/armando-rios/dotfiles/", true},
		{"HTTPS://GitHub.com/armando-rios/dotfiles", true},
		{"https://github.com/Armando-Rios/Dotfiles.git", false},
		{"https://gitlab.com/armando-rios/dotfiles.git", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			h := testutil.NewHomeEnv(t)
			h.Repo(".dotfiles").File(".zshrc", "")
			fake := testutil.NewFakeRunner().Respond("git -C "+h.Path(".dotfiles"), tt.origin)

			err := dotfilesStep(t, h, fake, steps.CloneDotfiles)()
			if tt.same {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
			}
			assert.Empty(t, fake.Calls)
		})
	}
}

func TestInstallOhMyZsh_ClonesOnce(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	enable := func(d *steps.Deps) { d.Config.OhMyZsh.Enabled = true }

	fake := testutil.NewFakeRunner()
	require.NoError(t, dotfilesStep(t, h, fake, steps.InstallOhMyZsh, enable)())
	assert.Equal(t, []string{"git clone https://github.com/ohmyzsh/ohmyzsh " + h.Path(".oh-my-zsh")}, fake.Lines())

	h.Repo(".oh-my-zsh").File("oh-my-zsh.sh", "")
	fake = testutil.NewFakeRunner().Respond("git -C", "https://github.com/ohmyzsh/ohmyzsh.git")
	require.NoError(t, dotfilesStep(t, h, fake, steps.InstallOhMyZsh, enable)())
	assert.Empty(t, fake.Calls)
}

func seedDotfiles(h *testutil.HomeEnv) string {
	return h.Repo(".dotfiles").
		File(".zshrc", "source $ZSH/oh-my-zsh.sh\n").
		File(".tmux.conf", "set -g mouse on\n").
		File(".config/hypr/hyprland.conf", "monitor=,preferred,auto,1\n").
		File(".config/nvim/init.lua", "vim.o.number = true\n").
		File(".gitignore", "*.log\n").
		File("README.md", "# dotfiles\n").
		Root()
}

func TestProvisionDotfiles(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	repo := seedDotfiles(h)

	// pre-existing state a fresh install leaves behind
	h.WriteFile(".zshrc", "# default zshrc\n")
	h.WriteFile(".config/hypr/hyprland.conf", "# default hyprland\n")
	h.WriteFile(".config/kitty/kitty.conf", "font_size 11\n")
	h.WriteFile(".config/unrelated/keep.conf", "keep\n")
	h.WriteFile(".ssh/known_hosts", "host\n")

	require.NoError(t, dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)())

	assert.Equal(t, filepath.Join(repo, ".zshrc"), h.Readlink(".zshrc"))
	assert.Equal(t, filepath.Join(repo, ".tmux.conf"), h.Readlink(".tmux.conf"))
	// .config exists as a real directory, so linking descends into it
	assert.Equal(t, filepath.Join(repo, ".config", "hypr"), h.Readlink(".config/hypr"))
	assert.Equal(t, filepath.Join(repo, ".config", "nvim"), h.Readlink(".config/nvim"))

	// conflicts removed, unrelated content kept
	assert.NoDirExists(t, h.Path(".config/kitty"))
	assert.FileExists(t, h.Path(".config/unrelated/keep.conf"))
	assert.FileExists(t, h.Path(".ssh/known_hosts"))

	// repository metadata is never linked
	_, err := os.Lstat(h.Path(".git"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(h.Path("README.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(h.Path(".gitignore"))
	assert.True(t, os.IsNotExist(err))
}

func TestProvisionDotfiles_Idempotent(t *testing.T) {
	t.Run("existing config directory", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		repo := seedDotfiles(h)
		h.WriteFile(".config/unrelated/keep.conf", "keep\n")
		run := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)

		require.NoError(t, run())
		require.NoError(t, run())

		assert.Equal(t, filepath.Join(repo, ".zshrc"), h.Readlink(".zshrc"))
		assert.Equal(t, filepath.Join(repo, ".config", "hypr"), h.Readlink(".config/hypr"))
		assert.FileExists(t, filepath.Join(repo, ".config", "hypr", "hyprland.conf"))
	})

	t.Run("config directory linked into the checkout", func(t *testing.T) {
		h := testutil.NewHomeEnv(t)
		repo := seedDotfiles(h)
		run := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)

		require.NoError(t, run())
		assert.Equal(t, filepath.Join(repo, ".config"), h.Readlink(".config"))

		// the conflict paths now resolve into the checkout and must survive
		require.NoError(t, run())
		assert.Equal(t, filepath.Join(repo, ".config"), h.Readlink(".config"))
		assert.FileExists(t, filepath.Join(repo, ".config", "nvim", "init.lua"))
		assert.FileExists(t, filepath.Join(repo, ".config", "hypr", "hyprland.conf"))
		assert.FileExists(t, h.Path(".config/nvim/init.lua"))
	})
}

func TestProvisionDotfiles_ForeignFileConflicts(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	h.Repo(".dotfiles").File(".gitconfig", "[user]\n")
	h.WriteFile(".gitconfig", "[user]\n\tname = someone\n")

	err := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
	assert.Equal(t, h.Path(".gitconfig"), errors.GetErrorDetails(err)["path"])
}

func TestProvisionDotfiles_ForeignLinkConflicts(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	h.Repo(".dotfiles").File(".gitconfig", "[user]\n")
	h.Symlink("/etc/gitconfig", ".gitconfig")

	err := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)()
	assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesConfig))
}

func TestProvisionDotfiles_MissingCheckout(t *testing.T) {
	h := testutil.NewHomeEnv(t)

	err := dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles)()
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	dry := func(d *steps.Deps) {
		d.DryRun = true
		d.FS = filesystem.NewDryRun(d.FS, zerolog.Nop())
	}
	assert.NoError(t, dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles, dry)())
}

func TestProvisionDotfiles_DryRunChangesNothing(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	seedDotfiles(h)
	h.WriteFile(".zshrc", "# default\n")

	dry := func(d *steps.Deps) {
		d.DryRun = true
		d.FS = filesystem.NewDryRun(d.FS, zerolog.Nop())
	}
	require.NoError(t, dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles, dry)())

	data, err := os.ReadFile(h.Path(".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "# default\n", string(data))
}

func TestProvisionDotfiles_ChownsCreatedEntries(t *testing.T) {
	h := testutil.NewHomeEnv(t)
	repo := h.Repo("checkout").File(".config/waybar/config", "{}").Root()

	var owned []string
	mutate := func(d *steps.Deps) {
		d.Config.Dotfiles.Dest = repo
		d.Chown = func(p string) error { owned = append(owned, p); return nil }
	}
	require.NoError(t, dotfilesStep(t, h, testutil.NewFakeRunner(), steps.ProvisionDotfiles, mutate)())

	assert.Equal(t, []string{h.Path(".config")}, owned)
	assert.Equal(t, filepath.Join(repo, ".config"), h.Readlink(".config"))
}
