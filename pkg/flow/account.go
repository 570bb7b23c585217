package flow

import (
	"os"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/paths"
)

// ResolveAccount picks the account that receives dotfiles, shell and
// runtime: dotfiles.user when configured, otherwise the invoking user.
func ResolveAccount(cfg *config.Config, euid int) (paths.Account, error) {
	if cfg.Dotfiles.User != "" {
		return paths.LookupAccount(cfg.Dotfiles.User, euid)
	}
	return paths.TargetAccount(euid)
}

// chownFor hands created entries to acct when root works on its behalf
func chownFor(acct paths.Account, euid int, dryRun bool) func(string) error {
	if euid != 0 || !acct.ViaSudo || dryRun {
		return nil
	}
	return func(p string) error {
		return os.Lchown(p, acct.UID, acct.GID)
	}
}
