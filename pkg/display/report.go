package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/archup/pkg/detect"
	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/types"
)

// Problem is a failure or warning in machine-readable form
type Problem struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// EnvironmentReport is the JSON shape of `archup detect`
type EnvironmentReport struct {
	Privileged       bool            `json:"privileged"`
	LiveMedium       bool            `json:"live_medium"`
	ArchLinux        bool            `json:"arch_linux"`
	Firmware         string          `json:"firmware"`
	Tools            map[string]bool `json:"tools"`
	NetworkProbed    bool            `json:"network_probed"`
	NetworkReachable bool            `json:"network_reachable"`
	Failures         []Problem       `json:"failures"`
	Warnings         []Problem       `json:"warnings"`
}

// NewEnvironmentReport flattens an environment and its findings
func NewEnvironmentReport(env types.EnvironmentContext, findings detect.Findings) EnvironmentReport {
	return EnvironmentReport{
		Privileged:       env.IsPrivileged,
		LiveMedium:       env.IsLiveMedium,
		ArchLinux:        env.TargetDistroDetected,
		Firmware:         string(env.Firmware),
		Tools:            env.RequiredToolsPresent,
		NetworkProbed:    env.NetworkProbed,
		NetworkReachable: env.NetworkReachable,
		Failures:         problems(findings.Failures),
		Warnings:         problems(findings.Warnings),
	}
}

func problems(errs []*errors.ArchupError) []Problem {
	out := make([]Problem, 0, len(errs))
	for _, e := range errs {
		p := Problem{Code: string(e.Code), Message: e.Message}
		if len(e.Details) > 0 {
			p.Details = e.Details
		}
		out = append(out, p)
	}
	return out
}

// RenderEnvironment writes the environment report in the given format
func RenderEnvironment(w io.Writer, format Format, env types.EnvironmentContext, findings detect.Findings) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewEnvironmentReport(env, findings))
	}

	p := painter(format.Styled())
	row := func(key, value string) {
		fmt.Fprintf(w, "  %s %s\n", p.paint("Key", fmt.Sprintf("%-16s", key)), value)
	}

	fmt.Fprintln(w, p.paint("Header", "Environment"))
	row("privileged", yesNo(env.IsPrivileged))
	row("live medium", yesNo(env.IsLiveMedium))
	row("arch linux", yesNo(env.TargetDistroDetected))
	row("firmware", string(env.Firmware))
	row("tools", toolList(p, env.RequiredToolsPresent))
	row("network", network(p, env))

	if len(findings.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.paint("Error", "Failures:"))
		for _, f := range findings.Failures {
			fmt.Fprintf(w, "  %s %s\n", p.paint("Error", "✗"), f.Message)
		}
	}
	if len(findings.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.paint("Warning", "Warnings:"))
		for _, f := range findings.Warnings {
			fmt.Fprintf(w, "  %s %s\n", p.paint("Warning", "!"), f.Message)
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func toolList(p painter, tools map[string]bool) string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if tools[name] {
			parts = append(parts, name+" "+p.paint("Success", "✓"))
		} else {
			parts = append(parts, name+" "+p.paint("Error", "✗"))
		}
	}
	return strings.Join(parts, "  ")
}

func network(p painter, env types.EnvironmentContext) string {
	switch {
	case !env.NetworkProbed:
		return p.paint("Muted", "not probed")
	case env.NetworkReachable:
		return p.paint("Success", "reachable")
	default:
		return p.paint("Error", "unreachable")
	}
}
