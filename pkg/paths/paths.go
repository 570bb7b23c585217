package paths

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/archup/pkg/errors"
)

// Environment variable names
const (
	// EnvHome is the standard home directory variable
	EnvHome = "HOME"

	// EnvSudoUser names the invoking account when running under sudo
	EnvSudoUser = "SUDO_USER"

	// EnvConfigDir overrides the XDG config directory for archup
	EnvConfigDir = "ARCHUP_CONFIG_DIR"
)

const (
	// AppDirName is the directory name used under XDG base directories
	AppDirName = "archup"

	// ConfigFileName is the user configuration file name
	ConfigFileName = "config.toml"
)

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment variable.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv(EnvHome)
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrFileAccess, "unable to determine home directory: neither os.UserHomeDir() nor HOME environment variable are available")
}

// ExpandHome expands a leading ~ against the given home directory.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigFile returns the default user configuration file location.
// ARCHUP_CONFIG_DIR takes precedence over $XDG_CONFIG_HOME/archup.
func ConfigFile() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(dir, ConfigFileName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}

// IsWithin reports whether path, once cleaned, stays inside base.
func IsWithin(base, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Account is the user that provisioning targets
type Account struct {
	Username string
	HomeDir  string
	UID      int
	GID      int
	// ViaSudo is set when archup runs as root on behalf of this account;
	// commands for the account are then wrapped in sudo -u.
	ViaSudo bool
}

func accountFrom(u *user.User, viaSudo bool) Account {
	uid, _ := strconv.Atoi(u.Uid)
	gid, _ := strconv.Atoi(u.Gid)
	return Account{Username: u.Username, HomeDir: u.HomeDir, UID: uid, GID: gid, ViaSudo: viaSudo}
}

// LookupAccount resolves a named account. When euid is root and the
// account is not root, commands for it are run through sudo.
func LookupAccount(name string, euid int) (Account, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return Account{}, errors.Wrapf(err, errors.ErrNotFound, "cannot resolve user %q", name).
			WithDetail("user", name)
	}
	return accountFrom(u, euid == 0 && u.Uid != "0"), nil
}

// TargetAccount resolves the account whose home receives dotfiles and
// whose login shell is changed. When running as root under sudo this is
// the invoking user, not root.
func TargetAccount(euid int) (Account, error) {
	if euid == 0 {
		if name := os.Getenv(EnvSudoUser); name != "" && name != "root" {
			return LookupAccount(name, euid)
		}
	}

	u, err := user.Current()
	if err != nil {
		home, herr := GetHomeDirectory()
		if herr != nil {
			return Account{}, herr
		}
		name := os.Getenv("USER")
		if name == "" {
			return Account{}, errors.Wrap(err, errors.ErrNotFound, "cannot determine current user")
		}
		return Account{Username: name, HomeDir: home, UID: euid, GID: os.Getegid()}, nil
	}

	acct := accountFrom(u, false)
	if envHome := os.Getenv(EnvHome); envHome != "" && euid != 0 {
		acct.HomeDir = envHome
	}
	return acct, nil
}

// String implements fmt.Stringer
func (a Account) String() string {
	if a.ViaSudo {
		return fmt.Sprintf("%s (via sudo)", a.Username)
	}
	return a.Username
}
