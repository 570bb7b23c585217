package steps

import (
	"context"

	"github.com/arthur-debert/archup/pkg/runner"
)

func (s *steps) systemUpdate(ctx context.Context) error {
	return s.Runner.Run(ctx, s.privileged(runner.Cmd("pacman", "-Syu", "--noconfirm")))
}

// installPackages relies on --needed so a re-run reinstalls nothing
func (s *steps) installPackages(ctx context.Context) error {
	pkgs := s.Config.AllPackages()
	if len(pkgs) == 0 {
		s.logger.Info().Msg("No official packages configured")
		return nil
	}
	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	return s.Runner.Run(ctx, s.privileged(runner.Cmd("pacman", args...)))
}

func (s *steps) installAURPackages(ctx context.Context) error {
	pkgs := s.Config.AUR.Packages
	if len(pkgs) == 0 {
		s.logger.Info().Msg("No AUR packages configured")
		return nil
	}
	args := append([]string{"-S", "--needed", "--noconfirm"}, pkgs...)
	cmd, err := s.unprivileged(runner.Cmd(s.Config.AUR.Helper, args...))
	if err != nil {
		return err
	}
	return s.Runner.Run(ctx, cmd)
}
