package filesystem

import (
	"io/fs"

	"github.com/arthur-debert/archup/pkg/types"
	"github.com/rs/zerolog"
)

// dryRunFS reads through to a base filesystem and logs every mutation
// instead of performing it
type dryRunFS struct {
	base   types.FS
	logger zerolog.Logger
}

// NewDryRun wraps base so that writes are only logged
func NewDryRun(base types.FS, logger zerolog.Logger) types.FS {
	return &dryRunFS{base: base, logger: logger}
}

func (d *dryRunFS) would(op, path string) {
	d.logger.Info().Str("op", op).Str("path", path).Msg("Dry run mode - filesystem change skipped")
}

func (d *dryRunFS) Stat(name string) (fs.FileInfo, error) { return d.base.Stat(name) }
func (d *dryRunFS) Lstat(name string) (fs.FileInfo, error) { return d.base.Lstat(name) }
func (d *dryRunFS) ReadFile(name string) ([]byte, error) { return d.base.ReadFile(name) }
func (d *dryRunFS) ReadDir(name string) ([]fs.DirEntry, error) { return d.base.ReadDir(name) }
func (d *dryRunFS) Readlink(name string) (string, error) { return d.base.Readlink(name) }

func (d *dryRunFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	d.would("write", name)
	return nil
}

func (d *dryRunFS) Rename(oldpath, newpath string) error {
	d.would("rename", newpath)
	return nil
}

func (d *dryRunFS) Chmod(name string, mode fs.FileMode) error {
	d.would("chmod", name)
	return nil
}

func (d *dryRunFS) MkdirAll(path string, perm fs.FileMode) error {
	d.would("mkdir", path)
	return nil
}

func (d *dryRunFS) Symlink(oldname, newname string) error {
	d.logger.Info().Str("op", "symlink").Str("source", oldname).Str("path", newname).Msg("Dry run mode - filesystem change skipped")
	return nil
}

func (d *dryRunFS) Remove(name string) error {
	d.would("remove", name)
	return nil
}

func (d *dryRunFS) RemoveAll(path string) error {
	d.would("remove", path)
	return nil
}
