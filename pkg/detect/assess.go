package detect

import (
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/types"
)

// Findings classifies an EnvironmentContext. Failures are fatal without
// prompting; warnings may be overridden by the operator.
type Findings struct {
	Failures []*errors.ArchupError
	Warnings []*errors.ArchupError
}

// OK reports whether there are no hard failures
func (f Findings) OK() bool {
	return len(f.Failures) == 0
}

// Err returns the first hard failure, or nil
func (f Findings) Err() error {
	if len(f.Failures) == 0 {
		return nil
	}
	return f.Failures[0]
}

// Warning returns the warning with the given code, if present
func (f Findings) Warning(code errors.ErrorCode) (*errors.ArchupError, bool) {
	for _, w := range f.Warnings {
		if w.Code == code {
			return w, true
		}
	}
	return nil, false
}

// Assess classifies the environment: one TOOL_MISSING per missing tool in
// name order, then NETWORK_UNREACHABLE; warnings for a foreign
// distribution and for privilege outside a live medium.
func Assess(env types.EnvironmentContext) Findings {
	var f Findings

	for _, tool := range env.MissingTools() {
		f.Failures = append(f.Failures,
			errors.Newf(errors.ErrToolMissing, "required tool %s not found in PATH", tool).
				WithDetail("tool", tool))
	}
	if env.NetworkProbed && !env.NetworkReachable {
		f.Failures = append(f.Failures,
			errors.New(errors.ErrNetworkUnreachable, "no internet connection"))
	}

	if !env.TargetDistroDetected {
		f.Warnings = append(f.Warnings,
			errors.New(errors.ErrWrongDistribution, "this system does not look like Arch Linux"))
	}
	if env.IsPrivileged && !env.IsLiveMedium {
		f.Warnings = append(f.Warnings,
			errors.New(errors.ErrUnexpectedPrivilege, "running as root outside the live installation medium"))
	}

	return f
}
