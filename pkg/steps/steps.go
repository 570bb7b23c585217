// Package steps is the library of provisioning steps. Each step wraps one
// or more external commands and either completes or fails as a whole; the
// catalog fixes their order.
package steps

import (
	"os/exec"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/arthur-debert/archup/pkg/runner"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/rs/zerolog"
)

// Step names
const (
	SystemUpdate       = "system-update"
	InstallPackages    = "install-packages"
	BootstrapAURHelper = "bootstrap-aur-helper"
	InstallAURPackages = "install-aur-packages"
	CloneDotfiles      = "clone-dotfiles"
	ProvisionDotfiles  = "provision-dotfiles"
	InstallOhMyZsh     = "install-oh-my-zsh"
	ChangeShell        = "change-shell"
	InstallRuntime     = "install-runtime"
	EnableServices     = "enable-services"
)

// DefaultPasswdFile is where login shells are read from
const DefaultPasswdFile = "/etc/passwd"

// Deps carries everything the steps touch on the host
type Deps struct {
	Config *config.Config
	Runner runner.Runner
	FS     types.FS
	// LookPath resolves executables, exec.LookPath by default
	LookPath func(string) (string, error)
	// EUID is the effective uid archup runs with
	EUID int
	// Account receives dotfiles, shell and runtime
	Account paths.Account
	// PasswdFile defaults to /etc/passwd
	PasswdFile string
	// DryRun tolerates state that earlier, skipped steps would have created
	DryRun bool
	// Chown, when set, is applied to links and directories created in
	// the account's home (used when running as root for another user)
	Chown func(path string) error
}

// steps is the internal view with defaults filled in
type steps struct {
	Deps
	logger zerolog.Logger
	// removed records paths a dry run pretended to delete
	removed map[string]bool
}

func newSteps(d Deps) *steps {
	if d.FS == nil {
		d.FS = filesystem.NewOS()
	}
	if d.LookPath == nil {
		d.LookPath = exec.LookPath
	}
	if d.PasswdFile == "" {
		d.PasswdFile = DefaultPasswdFile
	}
	return &steps{Deps: d, logger: logging.GetLogger("steps"), removed: make(map[string]bool)}
}

// Catalog returns the steps in execution order. Optional steps appear
// only when enabled in the configuration.
func Catalog(d Deps) []types.Step {
	s := newSteps(d)
	cfg := s.Config

	catalog := []types.Step{
		{Name: SystemUpdate, Description: "Synchronize and upgrade all packages", Action: s.systemUpdate},
		{Name: InstallPackages, Description: "Install official repository packages", Action: s.installPackages},
		{Name: BootstrapAURHelper, Description: "Build and install the AUR helper", Action: s.bootstrapAURHelper},
		{Name: InstallAURPackages, Description: "Install AUR packages", Action: s.installAURPackages, After: []string{BootstrapAURHelper}},
		{Name: CloneDotfiles, Description: "Clone the dotfiles repository", Action: s.cloneDotfiles},
		{Name: ProvisionDotfiles, Description: "Replace conflicting configs and link dotfiles into $HOME", Action: s.provisionDotfiles, After: []string{CloneDotfiles}},
	}
	if cfg.OhMyZsh.Enabled {
		catalog = append(catalog, types.Step{Name: InstallOhMyZsh, Description: "Clone oh-my-zsh", Action: s.installOhMyZsh})
	}
	catalog = append(catalog,
		types.Step{Name: ChangeShell, Description: "Switch the login shell", Action: s.changeShell},
		types.Step{Name: InstallRuntime, Description: "Install the language runtime through the shell profile", Action: s.installRuntime, After: []string{ChangeShell}},
	)
	if len(cfg.Services.Enable) > 0 {
		catalog = append(catalog, types.Step{Name: EnableServices, Description: "Enable system services", Action: s.enableServices})
	}
	return catalog
}

// privileged prefixes sudo when archup is not already root
func (s *steps) privileged(c runner.Command) runner.Command {
	if s.EUID == 0 {
		return c
	}
	return runner.Command{
		Name: "sudo",
		Args: append([]string{c.Name}, c.Args...),
		Dir:  c.Dir,
		Env:  c.Env,
	}
}

// asAccount runs c as the target account. As root without a target
// account the command runs as root.
func (s *steps) asAccount(c runner.Command) runner.Command {
	if s.EUID != 0 || !s.Account.ViaSudo {
		return c
	}
	return runner.Command{
		Name: "sudo",
		Args: append([]string{"-u", s.Account.Username, "-H", c.Name}, c.Args...),
		Dir:  c.Dir,
		Env:  c.Env,
	}
}

// unprivileged is asAccount for commands that must never run as root
func (s *steps) unprivileged(c runner.Command) (runner.Command, error) {
	if s.EUID == 0 && !s.Account.ViaSudo {
		return runner.Command{}, errors.Newf(errors.ErrUnexpectedPrivilege,
			"%s must not run as root; run archup through sudo from a regular user", c.Name).
			WithDetail("command", c.String())
	}
	return s.asAccount(c), nil
}

func (s *steps) chown(path string) error {
	if s.Chown == nil {
		return nil
	}
	if err := s.Chown(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot change owner of %s", path).
			WithDetail("path", path)
	}
	return nil
}

func (s *steps) home(p string) string {
	return paths.ExpandHome(p, s.Account.HomeDir)
}
