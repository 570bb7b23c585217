// Package confirm implements the operator confirmation gate used before
// archup continues past a recoverable environment warning.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Gate asks the operator a yes/no question
type Gate interface {
	// Confirm returns true only for an affirmative answer. Empty input
	// yields def.
	Confirm(prompt string, def bool) (bool, error)
}

// Affirmative reports whether a line of input means yes
func Affirmative(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}

// Interpret maps one line of operator input to a decision
func Interpret(input string, def bool) bool {
	if strings.TrimSpace(input) == "" {
		return def
	}
	return Affirmative(input)
}

// ConsoleGate reads answers line by line from a reader
type ConsoleGate struct {
	in     *bufio.Reader
	out    io.Writer
	styled bool
}

// NewConsoleGate creates a gate reading from in and prompting on out
func NewConsoleGate(in io.Reader, out io.Writer, styled bool) *ConsoleGate {
	return &ConsoleGate{
		in:     bufio.NewReader(in),
		out:    out,
		styled: styled,
	}
}

// Confirm implements Gate
func (g *ConsoleGate) Confirm(prompt string, def bool) (bool, error) {
	logger := logging.GetLogger("confirm")
	marker := "[y/N]"
	if def {
		marker = "[Y/n]"
	}

	question := prompt
	if g.styled {
		question = pterm.Warning.MessageStyle.Sprint(prompt)
		marker = pterm.Bold.Sprint(marker)
	}
	if _, err := fmt.Fprintf(g.out, "%s %s: ", question, marker); err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to write prompt")
	}

	line, err := g.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, errors.ErrInvalidInput, "failed to read operator input")
	}
	if err == io.EOF && line == "" {
		// closed input is not an answer
		_, _ = fmt.Fprintln(g.out)
		logger.Debug().Str("prompt", prompt).Msg("Input closed, declining")
		return false, nil
	}

	answer := Interpret(line, def)
	logger.Debug().
		Str("prompt", prompt).
		Str("input", strings.TrimSpace(line)).
		Bool("answer", answer).
		Msg("Operator answered")
	return answer, nil
}

// AutoGate answers yes to everything (--yes)
type AutoGate struct{}

// Confirm implements Gate
func (AutoGate) Confirm(prompt string, def bool) (bool, error) {
	logger := logging.GetLogger("confirm")
	logger.Info().Str("prompt", prompt).Msg("Auto-confirmed")
	return true, nil
}

// DeclineGate answers no without reading, for non-interactive stdin
type DeclineGate struct {
	Out io.Writer
}

// Confirm implements Gate
func (g DeclineGate) Confirm(prompt string, def bool) (bool, error) {
	if g.Out != nil {
		_, _ = fmt.Fprintf(g.Out, "%s: declined (stdin is not a terminal; use --yes)\n", prompt)
	}
	logger := logging.GetLogger("confirm")
	logger.Info().Str("prompt", prompt).Msg("Non-interactive input, declining")
	return false, nil
}

// ForTerminal picks the gate for the process: AutoGate with --yes, a
// ConsoleGate when stdin is a terminal, DeclineGate otherwise.
func ForTerminal(assumeYes bool, in *os.File, out io.Writer, styled bool) Gate {
	if assumeYes {
		return AutoGate{}
	}
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return NewConsoleGate(in, out, styled)
	}
	return DeclineGate{Out: out}
}

// Require asks the gate and converts a decline into CONFIRMATION_DECLINED
func Require(g Gate, prompt string, cause *errors.ArchupError) error {
	ok, err := g.Confirm(prompt, false)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	declined := errors.Newf(errors.ErrConfirmationDeclined, "operator declined: %s", prompt)
	if cause != nil {
		declined.Wrapped = cause
		declined.WithDetail("warning", string(cause.Code))
	}
	return declined
}
