package config

import (
	"time"
)

// Detect configures environment detection
type Detect struct {
	LiveMarker    string        `koanf:"live_marker"`
	DistroMarker  string        `koanf:"distro_marker"`
	EFIDir        string        `koanf:"efi_dir"`
	RequiredTools []string      `koanf:"required_tools"`
	ProbeURL      string        `koanf:"probe_url"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
}

// Fetch configures the bootstrap artifact staging
type Fetch struct {
	BaseURL string   `koanf:"base_url"`
	WorkDir string   `koanf:"work_dir"`
	Files   []string `koanf:"files"`
	// Handoff is the staged file, relative to WorkDir, that replaces the
	// archup process once staging succeeds.
	Handoff string `koanf:"handoff"`
}

// Packages lists official repository packages
type Packages struct {
	Official []string `koanf:"official"`
	// Extra groups are appended to the bulk install, e.g. graphics drivers
	Extra []string `koanf:"extra"`
}

// AUR configures the helper bootstrap and AUR installs
type AUR struct {
	Helper       string   `koanf:"helper"`
	Repo         string   `koanf:"repo"`
	BuildCommand string   `koanf:"build_command"`
	ScratchDir   string   `koanf:"scratch_dir"`
	Packages     []string `koanf:"packages"`
}

// Dotfiles configures the dotfiles checkout and how it is linked into $HOME
type Dotfiles struct {
	Repo      string   `koanf:"repo"`
	Dest      string   `koanf:"dest"`
	Conflicts []string `koanf:"conflicts"`
	Ignore    []string `koanf:"ignore"`
	// User overrides the account that receives the dotfiles
	User string `koanf:"user"`
}

// Shell names the login shell to switch to
type Shell struct {
	Name string `koanf:"name"`
}

// Runtime is the script run under the target shell to install the runtime
type Runtime struct {
	Script string `koanf:"script"`
}

// Services lists systemd units to enable
type Services struct {
	Enable []string `koanf:"enable"`
}

// OhMyZsh configures the optional oh-my-zsh checkout
type OhMyZsh struct {
	Enabled bool   `koanf:"enabled"`
	Repo    string `koanf:"repo"`
	Dest    string `koanf:"dest"`
}

// Display holds presentation options
type Display struct {
	Pace        time.Duration `koanf:"pace"`
	ClearScreen bool          `koanf:"clear_screen"`
	Banner      bool          `koanf:"banner"`
}

// Config is the main configuration structure
type Config struct {
	Detect   Detect   `koanf:"detect"`
	Fetch    Fetch    `koanf:"fetch"`
	Packages Packages `koanf:"packages"`
	AUR      AUR      `koanf:"aur"`
	Dotfiles Dotfiles `koanf:"dotfiles"`
	Shell    Shell    `koanf:"shell"`
	Runtime  Runtime  `koanf:"runtime"`
	Services Services `koanf:"services"`
	OhMyZsh  OhMyZsh  `koanf:"ohmyzsh"`
	Display  Display  `koanf:"display"`

	// Raw is the merged key tree as loaded, before decoding
	Raw map[string]interface{} `koanf:"-"`
	// Source is the user file that was merged, empty when none was found
	Source string `koanf:"-"`
}

// AllPackages returns official packages followed by the extra groups
func (c *Config) AllPackages() []string {
	all := make([]string, 0, len(c.Packages.Official)+len(c.Packages.Extra))
	all = append(all, c.Packages.Official...)
	all = append(all, c.Packages.Extra...)
	return all
}

// Default returns the embedded defaults, ignoring user files and environment
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipUserFile: true, SkipEnv: true})
	if err != nil {
		// embedded defaults are part of the build; failing here is a programming error
		panic(err)
	}
	return cfg
}
