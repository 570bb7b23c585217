package steps

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/paths"
)

// provisionDotfiles removes the configured conflict paths, then links the
// repository into $HOME the way `stow .` run from the checkout would.
func (s *steps) provisionDotfiles(ctx context.Context) error {
	repo := s.home(s.Config.Dotfiles.Dest)
	home := s.Account.HomeDir

	if _, err := s.FS.Stat(repo); err != nil {
		if s.DryRun {
			s.logger.Info().Str("path", repo).Msg("Dry run mode - dotfiles checkout not present, nothing to link")
			return nil
		}
		return errors.Wrapf(err, errors.ErrNotFound, "dotfiles checkout %s not found", repo).
			WithDetail("path", repo)
	}

	for _, rel := range s.Config.Dotfiles.Conflicts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.removeConflict(filepath.Join(home, rel), home, repo); err != nil {
			return err
		}
	}

	return s.linkTree(ctx, repo, home, true)
}

// removeConflict deletes p unless it already resolves into the repository,
// either as a link itself or through a linked parent such as ~/.config
func (s *steps) removeConflict(p, home, repo string) error {
	if s.linkedParent(p, home, repo) {
		s.logger.Debug().Str("path", p).Msg("Conflict lives under a dotfiles link")
		return nil
	}

	info, err := s.lstat(p)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", p).WithDetail("path", p)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		if target, err := s.FS.Readlink(p); err == nil && pointsInto(p, target, repo) {
			s.logger.Debug().Str("path", p).Msg("Conflict already linked to dotfiles")
			return nil
		}
	}

	s.logger.Info().Str("path", p).Msg("Removing conflicting config")
	if err := s.FS.RemoveAll(p); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", p).WithDetail("path", p)
	}
	if s.DryRun {
		s.removed[p] = true
	}
	return nil
}

// linkedParent reports whether a directory between home and p is a link
// into repo. Removing p would then delete the repository's own files.
func (s *steps) linkedParent(p, home, repo string) bool {
	home = filepath.Clean(home)
	for d := filepath.Dir(p); d != home && paths.IsWithin(home, d); d = filepath.Dir(d) {
		info, err := s.lstat(d)
		if err != nil || info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		target, err := s.FS.Readlink(d)
		return err == nil && pointsInto(d, target, repo)
	}
	return false
}

// lstat is FS.Lstat that also hides whatever a dry run pretended to remove
func (s *steps) lstat(p string) (fs.FileInfo, error) {
	for d := p; ; d = filepath.Dir(d) {
		if s.removed[d] {
			return nil, &fs.PathError{Op: "lstat", Path: p, Err: fs.ErrNotExist}
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	return s.FS.Lstat(p)
}

// linkTree links every entry of srcDir into dstDir. An existing real
// directory is descended into instead of being replaced.
func (s *steps) linkTree(ctx context.Context, srcDir, dstDir string, top bool) error {
	entries, err := s.FS.ReadDir(srcDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", srcDir).WithDetail("path", srcDir)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		if top && s.ignored(name) {
			continue
		}
		if err := s.linkEntry(ctx, filepath.Join(srcDir, name), filepath.Join(dstDir, name), entry.IsDir()); err != nil {
			return err
		}
	}
	return nil
}

func (s *steps) linkEntry(ctx context.Context, src, dst string, srcIsDir bool) error {
	info, err := s.lstat(dst)
	switch {
	case os.IsNotExist(err):
		if err := s.mkdirOwned(filepath.Dir(dst)); err != nil {
			return err
		}
		if err := s.FS.Symlink(src, dst); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s", dst).WithDetail("path", dst)
		}
		s.logger.Debug().Str("source", src).Str("target", dst).Msg("Linked")
		return s.chown(dst)

	case err != nil:
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", dst).WithDetail("path", dst)

	case info.Mode()&fs.ModeSymlink != 0:
		target, err := s.FS.Readlink(dst)
		if err == nil && sameTarget(dst, target, src) {
			return nil
		}
		return conflict(dst, "is a link to "+target)

	case info.IsDir() && srcIsDir:
		return s.linkTree(ctx, src, dst, false)

	default:
		return conflict(dst, "already exists")
	}
}

// mkdirOwned creates dir and any missing parents, handing each created
// directory to the target account
func (s *steps) mkdirOwned(dir string) error {
	var missing []string
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := s.FS.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if err := s.FS.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir).WithDetail("path", dir)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := s.chown(missing[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *steps) ignored(name string) bool {
	for _, pattern := range s.Config.Dotfiles.Ignore {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func resolve(link, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(filepath.Dir(link), target)
}

func sameTarget(link, target, want string) bool {
	return resolve(link, target) == filepath.Clean(want)
}

func pointsInto(link, target, dir string) bool {
	return paths.IsWithin(dir, resolve(link, target))
}
