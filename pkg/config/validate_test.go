// pkg/config/validate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test configuration validation rules

package config_test

import (
	"testing"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"simple", "armando", true},
		{"with_digits_and_dash", "dev-01_x", true},
		{"empty", "", false},
		{"too_long", "abcdefghijklmnopqrstuvwxyz1234567", false},
		{"leading_digit", "1user", false},
		{"leading_hyphen", "-user", false},
		{"uppercase", "User", false},
		{"reserved", "root", false},
		{"reserved_daemon", "daemon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.ValidateUsername(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"empty_package", func(c *config.Config) { c.Packages.Official = append(c.Packages.Official, " ") }, "packages.official"},
		{"relative_dest", func(c *config.Config) { c.Dotfiles.Dest = "dots" }, "dotfiles.dest"},
		{"absolute_conflict", func(c *config.Config) { c.Dotfiles.Conflicts = []string{"/etc/passwd"} }, "dotfiles.conflicts"},
		{"escaping_conflict", func(c *config.Config) { c.Dotfiles.Conflicts = []string{"../x"} }, "dotfiles.conflicts"},
		{"handoff_not_fetched", func(c *config.Config) { c.Fetch.Handoff = "setup.sh" }, "fetch.handoff"},
		{"zero_timeout", func(c *config.Config) { c.Detect.ProbeTimeout = 0 }, "detect.probe_timeout"},
		{"helper_path", func(c *config.Config) { c.AUR.Helper = "/usr/bin/yay" }, "aur.helper"},
		{"reserved_user", func(c *config.Config) { c.Dotfiles.User = "root" }, "dotfiles.user"},
		{"empty_shell", func(c *config.Config) { c.Shell.Name = "" }, "shell.name"},
		{"empty_build_command", func(c *config.Config) { c.AUR.BuildCommand = "  " }, "aur.build_command"},
		{"unbalanced_build_command", func(c *config.Config) { c.AUR.BuildCommand = "makepkg 'oops" }, "aur.build_command"},
		{"broken_runtime_script", func(c *config.Config) { c.Runtime.Script = "source ~/.zshrc && (" }, "runtime.script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
