package steps

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/runner"
)

// changeShell switches the account's login shell unless it already is
// the configured one
func (s *steps) changeShell(ctx context.Context) error {
	name := s.Config.Shell.Name
	shellPath, err := s.LookPath(name)
	if err != nil {
		return errors.Newf(errors.ErrToolMissing, "shell %s not found in PATH", name).WithDetail("tool", name)
	}

	current, err := s.loginShell(s.Account.Username)
	if err != nil {
		return err
	}
	if current == shellPath {
		s.logger.Info().Str("shell", shellPath).Str("user", s.Account.Username).Msg("Login shell already set")
		return nil
	}

	return s.Runner.Run(ctx, runner.Cmd("chsh", "-s", shellPath, s.Account.Username))
}

// loginShell reads the shell field of the account's passwd entry
func (s *steps) loginShell(user string) (string, error) {
	data, err := s.FS.ReadFile(s.PasswdFile)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", s.PasswdFile).
			WithDetail("path", s.PasswdFile)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) >= 7 && fields[0] == user {
			return fields[6], nil
		}
	}
	return "", errors.Newf(errors.ErrNotFound, "user %s not found in %s", user, s.PasswdFile).
		WithDetail("user", user)
}

// installRuntime runs the runtime script under the target shell so the
// profile's version manager init is in effect
func (s *steps) installRuntime(ctx context.Context) error {
	return s.Runner.Run(ctx, s.asAccount(runner.Cmd(s.Config.Shell.Name, "-c", s.Config.Runtime.Script)))
}
