package steps

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/runner"
)

func (s *steps) cloneDotfiles(ctx context.Context) error {
	return s.cloneOrSkip(ctx, s.Config.Dotfiles.Repo, s.home(s.Config.Dotfiles.Dest))
}

func (s *steps) installOhMyZsh(ctx context.Context) error {
	return s.cloneOrSkip(ctx, s.Config.OhMyZsh.Repo, s.home(s.Config.OhMyZsh.Dest))
}

// cloneOrSkip clones repo into dest when dest is missing or empty, leaves
// an existing checkout of the same repository alone, and refuses anything
// else. It never overwrites.
func (s *steps) cloneOrSkip(ctx context.Context, repo, dest string) error {
	info, err := s.FS.Lstat(dest)
	switch {
	case os.IsNotExist(err):
		// fresh clone
	case err != nil:
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", dest).WithDetail("path", dest)
	case !info.IsDir():
		return conflict(dest, "exists and is not a directory")
	default:
		entries, err := s.FS.ReadDir(dest)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", dest).WithDetail("path", dest)
		}
		if len(entries) > 0 {
			return s.checkExistingClone(ctx, repo, dest)
		}
	}

	if err := s.mkdirOwned(filepath.Dir(dest)); err != nil {
		return err
	}
	return s.Runner.Run(ctx, s.asAccount(runner.Cmd("git", "clone", repo, dest)))
}

func (s *steps) checkExistingClone(ctx context.Context, repo, dest string) error {
	if _, err := s.FS.Stat(filepath.Join(dest, ".git")); err != nil {
		return conflict(dest, "exists and is not a git checkout")
	}

	// git hides repository config from users other than the owner (safe.directory)
	origin, err := s.Runner.Output(ctx, s.asAccount(runner.Cmd("git", "-C", dest, "config", "--get", "remote.origin.url")))
	if err != nil {
		return conflict(dest, "is a git checkout without an origin remote")
	}
	if !sameRepo(origin, repo) {
		return conflict(dest, "is a checkout of "+origin).WithDetail("origin", origin)
	}

	s.logger.Info().Str("path", dest).Str("repo", repo).Msg("Repository already cloned")
	return nil
}

func conflict(dest, reason string) *errors.ArchupError {
	return errors.Newf(errors.ErrDotfilesConfig, "%s %s; refusing to overwrite", dest, reason).
		WithDetail("path", dest)
}

// sameRepo compares remote URLs ignoring a trailing slash or .git suffix.
// Only the scheme and host are case-insensitive; repository paths are not.
func sameRepo(a, b string) bool {
	return normalizeRemote(a) == normalizeRemote(b)
}

func normalizeRemote(remote string) string {
	remote = strings.TrimSpace(remote)
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")

	if u, err := url.Parse(remote); err == nil && u.Scheme != "" && u.Host != "" {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		return u.String()
	}
	// scp-like form: user@host:owner/repo
	if at := strings.Index(remote, "@"); at >= 0 {
		if colon := strings.Index(remote[at:], ":"); colon > 0 {
			split := at + colon
			return remote[:at+1] + strings.ToLower(remote[at+1:split]) + remote[split:]
		}
	}
	return remote
}
