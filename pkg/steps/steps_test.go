// pkg/steps/steps_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: FakeRunner, MockRunner
// PURPOSE: Test catalog order and the commands each step issues

package steps_test

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/arthur-debert/archup/pkg/pipeline"
	"github.com/arthur-debert/archup/pkg/runner"
	"github.com/arthur-debert/archup/pkg/steps"
	"github.com/arthur-debert/archup/pkg/testutil"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPath(present map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if p, ok := present[name]; ok {
			return p, nil
		}
		return "", exec.ErrNotFound
	}
}

func testCfg() *config.Config {
	cfg := config.Default()
	cfg.Packages.Official = []string{"git", "zsh"}
	cfg.AUR.Packages = []string{"hyprshot"}
	cfg.AUR.ScratchDir = "/tmp/archup-yay"
	return cfg
}

func find(t *testing.T, catalog []types.Step, name string) types.Step {
	t.Helper()
	for _, s := range catalog {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %s not in catalog", name)
	return types.Step{}
}

func TestCatalog_DefaultOrder(t *testing.T) {
	catalog := steps.Catalog(steps.Deps{Config: config.Default(), Runner: testutil.NewFakeRunner()})

	var names []string
	for _, s := range catalog {
		names = append(names, s.Name)
		assert.NotEmpty(t, s.Description)
	}
	assert.Equal(t, []string{
		"system-update",
		"install-packages",
		"bootstrap-aur-helper",
		"install-aur-packages",
		"clone-dotfiles",
		"provision-dotfiles",
		"change-shell",
		"install-runtime",
	}, names)

	_, err := pipeline.New(catalog...)
	assert.NoError(t, err)
}

func TestCatalog_OptionalSteps(t *testing.T) {
	cfg := config.Default()
	cfg.OhMyZsh.Enabled = true
	cfg.Services.Enable = []string{"sddm", "NetworkManager"}

	catalog := steps.Catalog(steps.Deps{Config: cfg, Runner: testutil.NewFakeRunner()})
	var names []string
	for _, s := range catalog {
		names = append(names, s.Name)
	}
	assert.Equal(t, "install-oh-my-zsh", names[6])
	assert.Equal(t, "change-shell", names[7])
	assert.Equal(t, "enable-services", names[len(names)-1])

	_, err := pipeline.New(catalog...)
	assert.NoError(t, err)
}

func TestPackageSteps_Unprivileged(t *testing.T) {
	cfg := testCfg()
	cfg.Packages.Extra = []string{"mesa"}
	fake := testutil.NewFakeRunner()
	catalog := steps.Catalog(steps.Deps{
		Config:   cfg,
		Runner:   fake,
		FS:       filesystem.NewMemory(),
		EUID:     1000,
		Account:  paths.Account{Username: "ana", HomeDir: "/home/ana"},
		LookPath: lookPath(nil),
	})
	ctx := context.Background()

	require.NoError(t, find(t, catalog, steps.SystemUpdate).Action(ctx))
	require.NoError(t, find(t, catalog, steps.InstallPackages).Action(ctx))
	require.NoError(t, find(t, catalog, steps.BootstrapAURHelper).Action(ctx))
	require.NoError(t, find(t, catalog, steps.InstallAURPackages).Action(ctx))

	assert.Equal(t, []string{
		"sudo pacman -Syu --noconfirm",
		"sudo pacman -S --needed --noconfirm git zsh mesa",
		"git clone https://aur.archlinux.org/yay.git /tmp/archup-yay",
		"makepkg -si --noconfirm",
		"yay -S --needed --noconfirm hyprshot",
	}, fake.Lines())
	assert.Equal(t, "/tmp/archup-yay", fake.Calls[3].Dir)
}

func TestPackageSteps_RootViaSudo(t *testing.T) {
	fake := testutil.NewFakeRunner()
	catalog := steps.Catalog(steps.Deps{
		Config:   testCfg(),
		Runner:   fake,
		FS:       filesystem.NewMemory(),
		EUID:     0,
		Account:  paths.Account{Username: "ana", HomeDir: "/home/ana", ViaSudo: true},
		LookPath: lookPath(nil),
	})
	ctx := context.Background()

	require.NoError(t, find(t, catalog, steps.SystemUpdate).Action(ctx))
	require.NoError(t, find(t, catalog, steps.BootstrapAURHelper).Action(ctx))
	require.NoError(t, find(t, catalog, steps.InstallAURPackages).Action(ctx))

	assert.Equal(t, []string{
		"pacman -Syu --noconfirm",
		"sudo -u ana -H git clone https://aur.archlinux.org/yay.git /tmp/archup-yay",
		"sudo -u ana -H makepkg -si --noconfirm",
		"sudo -u ana -H yay -S --needed --noconfirm hyprshot",
	}, fake.Lines())
}

func TestAURSteps_RootWithoutSudoUserRefused(t *testing.T) {
	fake := testutil.NewFakeRunner()
	catalog := steps.Catalog(steps.Deps{
		Config:   testCfg(),
		Runner:   fake,
		FS:       filesystem.NewMemory(),
		EUID:     0,
		Account:  paths.Account{Username: "root", HomeDir: "/root"},
		LookPath: lookPath(nil),
	})
	ctx := context.Background()

	err := find(t, catalog, steps.BootstrapAURHelper).Action(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnexpectedPrivilege))
	err = find(t, catalog, steps.InstallAURPackages).Action(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnexpectedPrivilege))
	assert.Empty(t, fake.Calls)
}

func TestBootstrapAURHelper_SkipsWhenInstalled(t *testing.T) {
	fake := testutil.NewFakeRunner()
	catalog := steps.Catalog(steps.Deps{
		Config:   testCfg(),
		Runner:   fake,
		FS:       filesystem.NewMemory(),
		EUID:     1000,
		LookPath: lookPath(map[string]string{"yay": "/usr/bin/yay"}),
	})

	require.NoError(t, find(t, catalog, steps.BootstrapAURHelper).Action(context.Background()))
	assert.Empty(t, fake.Calls)
}

func TestBootstrapAURHelper_CleansUpOnFailure(t *testing.T) {
	fs := filesystem.NewMemory()
	fake := testutil.NewFakeRunner()
	fake.FailOn("makepkg", errors.New(errors.ErrCommandFailed, "build failed"))
	fake.RunFunc = func(ctx context.Context, cmd runner.Command) error {
		if cmd.Name == "git" {
			// the clone populates the scratch dir
			return fs.WriteFile("/tmp/archup-yay/PKGBUILD", []byte("pkgname=yay"), 0644)
		}
		return nil
	}

	catalog := steps.Catalog(steps.Deps{
		Config:   testCfg(),
		Runner:   fake,
		FS:       fs,
		EUID:     1000,
		LookPath: lookPath(nil),
	})

	err := find(t, catalog, steps.BootstrapAURHelper).Action(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCommandFailed))

	_, statErr := fs.Stat("/tmp/archup-yay")
	assert.Error(t, statErr)
}

func TestInstallPackages_IdempotentRerun(t *testing.T) {
	fake := testutil.NewFakeRunner()
	step := find(t, steps.Catalog(steps.Deps{Config: testCfg(), Runner: fake, EUID: 0}), steps.InstallPackages)

	require.NoError(t, step.Action(context.Background()))
	require.NoError(t, step.Action(context.Background()))
	assert.Equal(t, fake.Lines()[0], fake.Lines()[1])
	assert.Contains(t, fake.Lines()[0], "--needed")
}

func TestEnableServices(t *testing.T) {
	cfg := testCfg()
	cfg.Services.Enable = []string{"sddm", "NetworkManager", "seatd"}
	fake := testutil.NewFakeRunner().FailOn("sudo systemctl enable NetworkManager", errors.New(errors.ErrCommandFailed, "no unit"))

	step := find(t, steps.Catalog(steps.Deps{Config: cfg, Runner: fake, EUID: 1000}), steps.EnableServices)
	err := step.Action(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{
		"sudo systemctl enable sddm",
		"sudo systemctl enable NetworkManager",
	}, fake.Lines())
}

func TestInstallRuntime_UsesShellProfile(t *testing.T) {
	m := &testutil.MockRunner{}
	m.On("Run", context.Background(), testutil.Argv("sudo", "-u", "ana", "-H", "zsh", "-c",
		"source ~/.zshrc && nvm install --lts && nvm use --lts")).Return(nil).Once()

	step := find(t, steps.Catalog(steps.Deps{
		Config:  config.Default(),
		Runner:  m,
		EUID:    0,
		Account: paths.Account{Username: "ana", HomeDir: "/home/ana", ViaSudo: true},
	}), steps.InstallRuntime)

	require.NoError(t, step.Action(context.Background()))
	m.AssertExpectations(t)
}

func TestChangeShell(t *testing.T) {
	tests := []struct {
		name    string
		passwd  string
		lookup  map[string]string
		want    []string
		errCode errors.ErrorCode
	}{
		{
			name:   "switches from bash",
			passwd: "root:x:0:0::/root:/bin/bash\nana:x:1000:1000::/home/ana:/bin/bash\n",
			lookup: map[string]string{"zsh": "/usr/bin/zsh"},
			want:   []string{"chsh -s /usr/bin/zsh ana"},
		},
		{
			name:   "already zsh",
			passwd: "ana:x:1000:1000::/home/ana:/usr/bin/zsh\n",
			lookup: map[string]string{"zsh": "/usr/bin/zsh"},
		},
		{
			name:    "zsh missing",
			passwd:  "ana:x:1000:1000::/home/ana:/bin/bash\n",
			errCode: errors.ErrToolMissing,
		},
		{
			name:    "user missing",
			passwd:  "root:x:0:0::/root:/bin/bash\n",
			lookup:  map[string]string{"zsh": "/usr/bin/zsh"},
			errCode: errors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			require.NoError(t, fs.WriteFile("/etc/passwd", []byte(tt.passwd), 0644))
			fake := testutil.NewFakeRunner()

			step := find(t, steps.Catalog(steps.Deps{
				Config:   config.Default(),
				Runner:   fake,
				FS:       fs,
				EUID:     1000,
				Account:  paths.Account{Username: "ana", HomeDir: "/home/ana"},
				LookPath: lookPath(tt.lookup),
			}), steps.ChangeShell)

			err := step.Action(context.Background())
			if tt.errCode != "" {
				assert.True(t, errors.IsErrorCode(err, tt.errCode), "got %v", err)
				assert.Empty(t, fake.Calls)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, fake.Calls)
			} else {
				assert.Equal(t, tt.want, fake.Lines())
			}
		})
	}
}

func TestHomeExpansion(t *testing.T) {
	cfg := config.Default()
	cfg.Dotfiles.Dest = "~/.dotfiles"
	fake := testutil.NewFakeRunner()
	home := t.TempDir()

	step := find(t, steps.Catalog(steps.Deps{
		Config:  cfg,
		Runner:  fake,
		EUID:    1000,
		Account: paths.Account{Username: "ana", HomeDir: home},
	}), steps.CloneDotfiles)

	require.NoError(t, step.Action(context.Background()))
	assert.Equal(t, []string{"git clone https://github.com/armando-rios/dotfiles.git " + filepath.Join(home, ".dotfiles")}, fake.Lines())
}
