package steps

import (
	"context"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/runner"
	"mvdan.cc/sh/v3/shell"
)

// bootstrapAURHelper builds the helper from its AUR checkout. The scratch
// checkout is removed whether or not the build succeeds.
func (s *steps) bootstrapAURHelper(ctx context.Context) (err error) {
	cfg := s.Config.AUR
	if path, lookErr := s.LookPath(cfg.Helper); lookErr == nil {
		s.logger.Info().Str("helper", cfg.Helper).Str("path", path).Msg("AUR helper already installed")
		return nil
	}

	build, err := shell.Fields(cfg.BuildCommand, nil)
	if err != nil || len(build) == 0 {
		return errors.Newf(errors.ErrInvalidInput, "cannot parse aur.build_command %q", cfg.BuildCommand)
	}

	clone, err := s.unprivileged(runner.Cmd("git", "clone", cfg.Repo, cfg.ScratchDir))
	if err != nil {
		return err
	}
	makepkg, err := s.unprivileged(runner.Command{Name: build[0], Args: build[1:], Dir: cfg.ScratchDir})
	if err != nil {
		return err
	}

	if rmErr := s.FS.RemoveAll(cfg.ScratchDir); rmErr != nil {
		return errors.Wrapf(rmErr, errors.ErrFileAccess, "cannot clear %s", cfg.ScratchDir)
	}
	defer func() {
		if rmErr := s.FS.RemoveAll(cfg.ScratchDir); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("dir", cfg.ScratchDir).Msg("Failed to remove helper build directory")
			if err == nil {
				err = errors.Wrapf(rmErr, errors.ErrFileAccess, "cannot remove %s", cfg.ScratchDir)
			}
		}
	}()

	if err := s.Runner.Run(ctx, clone); err != nil {
		return err
	}
	return s.Runner.Run(ctx, makepkg)
}
