package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var reservedUsernames = map[string]bool{
	"root": true, "bin": true, "daemon": true, "adm": true, "lp": true,
	"sync": true, "shutdown": true, "halt": true, "mail": true,
}

// ValidateUsername applies the Linux account name rules used for the
// provisioned user.
func ValidateUsername(name string) error {
	if problem := usernameProblem(name); problem != "" {
		return errors.New(errors.ErrInvalidInput, problem).WithDetail("user", name)
	}
	return nil
}

func usernameProblem(name string) string {
	switch {
	case name == "":
		return "username cannot be empty"
	case len(name) > 32:
		return "username must be 32 characters or less"
	case name[0] == '-' || (name[0] >= '0' && name[0] <= '9'):
		return "username cannot start with hyphen or number"
	case !usernamePattern.MatchString(name):
		return "username can only contain lowercase letters, numbers, underscores, and hyphens"
	case reservedUsernames[name]:
		return fmt.Sprintf("username %q is reserved", name)
	}
	return ""
}

// Validate checks the decoded configuration
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Detect.ProbeTimeout <= 0 {
		add("detect.probe_timeout must be positive")
	}
	if c.Detect.ProbeURL != "" {
		if _, err := url.ParseRequestURI(c.Detect.ProbeURL); err != nil {
			add("detect.probe_url is not a valid URL")
		}
	}
	checkEntries(add, "detect.required_tools", c.Detect.RequiredTools)

	if _, err := url.ParseRequestURI(c.Fetch.BaseURL); err != nil {
		add("fetch.base_url is not a valid URL")
	}
	if !filepath.IsAbs(c.Fetch.WorkDir) {
		add("fetch.work_dir must be absolute")
	}
	checkEntries(add, "fetch.files", c.Fetch.Files)
	if c.Fetch.Handoff != "" && !contains(c.Fetch.Files, c.Fetch.Handoff) {
		add("fetch.handoff %q is not one of fetch.files", c.Fetch.Handoff)
	}

	checkEntries(add, "packages.official", c.Packages.Official)
	checkEntries(add, "packages.extra", c.Packages.Extra)
	checkEntries(add, "aur.packages", c.AUR.Packages)
	if c.AUR.Helper == "" || strings.ContainsRune(c.AUR.Helper, '/') {
		add("aur.helper must be a bare command name")
	}
	if fields, err := shell.Fields(c.AUR.BuildCommand, nil); err != nil || len(fields) == 0 {
		add("aur.build_command must be a non-empty shell command")
	}
	if !filepath.IsAbs(c.AUR.ScratchDir) {
		add("aur.scratch_dir must be absolute")
	}

	if c.Dotfiles.Repo == "" {
		add("dotfiles.repo cannot be empty")
	}
	if !isHomePath(c.Dotfiles.Dest) {
		add("dotfiles.dest must be absolute or start with ~/")
	}
	for _, p := range c.Dotfiles.Conflicts {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(path.Clean(p), "..") {
			add("dotfiles.conflicts entry %q must be relative to $HOME", p)
		}
	}
	if c.Dotfiles.User != "" {
		if problem := usernameProblem(c.Dotfiles.User); problem != "" {
			add("dotfiles.user: %s", problem)
		}
	}

	if c.Shell.Name == "" {
		add("shell.name cannot be empty")
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(c.Runtime.Script), "runtime.script"); err != nil {
		add("runtime.script is not valid shell: %v", err)
	}
	checkEntries(add, "services.enable", c.Services.Enable)
	if c.OhMyZsh.Enabled && !isHomePath(c.OhMyZsh.Dest) {
		add("ohmyzsh.dest must be absolute or start with ~/")
	}
	if c.Display.Pace < 0 {
		add("display.pace cannot be negative")
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}

func checkEntries(add func(string, ...interface{}), key string, entries []string) {
	for i, e := range entries {
		if strings.TrimSpace(e) == "" {
			add("%s[%d] is empty", key, i)
		}
	}
}

func isHomePath(p string) bool {
	return filepath.IsAbs(p) || p == "~" || strings.HasPrefix(p, "~/")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
