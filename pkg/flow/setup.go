package flow

import (
	"context"

	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/pipeline"
	"github.com/arthur-debert/archup/pkg/steps"
	"github.com/arthur-debert/archup/pkg/types"
)

// Pipeline builds the setup pipeline without running anything
func Pipeline(opts Options) (*pipeline.Pipeline, error) {
	opts = opts.withDefaults()
	euid := opts.Geteuid()

	acct := opts.Account
	if acct == nil {
		resolved, err := ResolveAccount(opts.Config, euid)
		if err != nil {
			return nil, err
		}
		acct = &resolved
	}

	deps := steps.Deps{
		Config:     opts.Config,
		Runner:     opts.Runner,
		FS:         opts.FS,
		LookPath:   opts.LookPath,
		EUID:       euid,
		Account:    *acct,
		PasswdFile: opts.PasswdFile,
		DryRun:     opts.DryRun,
		Chown:      chownFor(*acct, euid, opts.DryRun),
	}
	p, err := pipeline.New(steps.Catalog(deps)...)
	if err != nil {
		return nil, err
	}
	return p.WithReporter(opts.Reporter), nil
}

// Setup runs preflight and then the step pipeline. A failed step aborts
// the run; the returned result tells which steps completed.
func Setup(ctx context.Context, opts Options) (types.PipelineResult, error) {
	opts = opts.withDefaults()
	logger := logging.GetLogger("flow")

	if _, err := Preflight(ctx, opts); err != nil {
		return types.PipelineResult{}, err
	}

	p, err := Pipeline(opts)
	if err != nil {
		return types.PipelineResult{}, err
	}

	done := logging.LogOperationStart(logger, "setup")
	result := p.Run(ctx)
	done()

	logger.Info().
		Str("state", string(result.State)).
		Strs("completed", result.Completed).
		Bool("dry_run", opts.DryRun).
		Msg("Setup finished")
	return result, result.Err()
}
