// Package flow strings the components together into the two things archup
// does: set up an installed system by running the step pipeline, or stage
// the richer installer and hand the process over to it. Both start with the
// same preflight: detect the host, stop on hard failures, and ask the
// operator about anything unusual.
package flow

import (
	"context"
	"io"
	"os"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/confirm"
	"github.com/arthur-debert/archup/pkg/detect"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/arthur-debert/archup/pkg/pipeline"
	"github.com/arthur-debert/archup/pkg/runner"
	"github.com/arthur-debert/archup/pkg/types"
)

// Gate prompts, in the order they are asked
const (
	PromptWrongDistribution   = "This system does not look like Arch Linux. Continue anyway?"
	PromptUnexpectedPrivilege = "archup is running as root outside the live installation medium. Continue anyway?"
)

// EnvironmentDetector is satisfied by *detect.Detector
type EnvironmentDetector interface {
	Detect(ctx context.Context) types.EnvironmentContext
}

// ExecFunc replaces the current process image, see unix.Exec
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Options carries the collaborators of a flow. Zero values are replaced by
// the real implementations.
type Options struct {
	Config   *config.Config
	Gate     confirm.Gate
	Detector EnvironmentDetector
	Runner   runner.Runner
	FS       types.FS
	Reporter pipeline.Reporter
	// Progress observes fetch status transitions
	Progress func(int, types.FetchEntry, types.FetchStatus)
	// Account overrides the resolved target account
	Account    *paths.Account
	Geteuid    func() int
	LookPath   func(string) (string, error)
	PasswdFile string
	Exec       ExecFunc
	DryRun     bool
}

func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Gate == nil {
		o.Gate = confirm.DeclineGate{Out: io.Discard}
	}
	if o.Geteuid == nil {
		o.Geteuid = os.Geteuid
	}
	if o.FS == nil {
		o.FS = filesystem.NewOS()
		if o.DryRun {
			o.FS = filesystem.NewDryRun(o.FS, logging.GetLogger("dryrun"))
		}
	}
	if o.Detector == nil {
		o.Detector = detect.New(o.Config.Detect, detect.WithEUID(o.Geteuid))
	}
	if o.Runner == nil {
		o.Runner = runner.NewExecRunner(runner.WithDryRun(o.DryRun))
	}
	if o.Reporter == nil {
		o.Reporter = pipeline.NopReporter{}
	}
	return o
}

// Preflight detects the environment and applies the gates. Missing tools
// and an unreachable network fail without prompting; a foreign
// distribution and unexpected privilege each need the operator's consent.
func Preflight(ctx context.Context, opts Options) (types.EnvironmentContext, error) {
	opts = opts.withDefaults()
	logger := logging.GetLogger("flow")

	env := opts.Detector.Detect(ctx)
	findings := detect.Assess(env)

	if !findings.OK() {
		// the first failure is returned, the rest would otherwise be lost
		for _, f := range findings.Failures[1:] {
			logger.Error().Str("code", string(f.Code)).Msg(f.Message)
		}
		return env, findings.Err()
	}

	if w, ok := findings.Warning(errors.ErrWrongDistribution); ok {
		if err := confirm.Require(opts.Gate, PromptWrongDistribution, w); err != nil {
			return env, err
		}
	}
	if w, ok := findings.Warning(errors.ErrUnexpectedPrivilege); ok {
		if err := confirm.Require(opts.Gate, PromptUnexpectedPrivilege, w); err != nil {
			return env, err
		}
	}

	return env, nil
}
