package steps

import (
	"context"

	"github.com/arthur-debert/archup/pkg/runner"
)

func (s *steps) enableServices(ctx context.Context) error {
	for _, unit := range s.Config.Services.Enable {
		if err := s.Runner.Run(ctx, s.privileged(runner.Cmd("systemctl", "enable", unit))); err != nil {
			return err
		}
	}
	return nil
}
