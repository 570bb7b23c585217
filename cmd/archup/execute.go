package archup

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/archup/pkg/display"
	"github.com/arthur-debert/archup/pkg/errors"
)

// Execute runs the root command with interrupt handling and returns the
// process exit status. An interrupt cancels the running step; completed
// steps stay done.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		display.RenderError(os.Stderr, err, display.DetectFormat(os.Stderr).Styled())
		return errors.ExitCode(err)
	}
	return 0
}
