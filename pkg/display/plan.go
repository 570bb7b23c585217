package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/archup/pkg/types"
	"github.com/charmbracelet/glamour"
)

// StepInfo is the JSON shape of a catalog entry
type StepInfo struct {
	Ordinal     int      `json:"ordinal"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	After       []string `json:"after,omitempty"`
}

func stepInfos(steps []types.Step) []StepInfo {
	infos := make([]StepInfo, 0, len(steps))
	for i, s := range steps {
		ordinal := s.Ordinal
		if ordinal == 0 {
			ordinal = i + 1
		}
		infos = append(infos, StepInfo{Ordinal: ordinal, Name: s.Name, Description: s.Description, After: s.After})
	}
	return infos
}

// RenderSteps lists the catalog, one step per line
func RenderSteps(w io.Writer, format Format, steps []types.Step) error {
	infos := stepInfos(steps)
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	p := painter(format.Styled())
	width := 0
	for _, s := range infos {
		width = max(width, len(s.Name))
	}
	for _, s := range infos {
		fmt.Fprintf(w, "%s %s  %s\n",
			p.paint("Counter", fmt.Sprintf("%2d.", s.Ordinal)),
			p.paint("Step", fmt.Sprintf("%-*s", width, s.Name)),
			s.Description)
	}
	return nil
}

// PlanMarkdown describes a run as a markdown document
func PlanMarkdown(steps []types.Step, dryRun bool) string {
	var b strings.Builder
	b.WriteString("# archup plan\n\n")
	if dryRun {
		b.WriteString("> Dry run: commands are logged, nothing is executed.\n\n")
	}
	b.WriteString("Steps run in this order. The first failure stops the run; completed steps are not undone.\n\n")
	b.WriteString("| # | Step | Description | Requires |\n")
	b.WriteString("|---|------|-------------|----------|\n")
	for _, s := range stepInfos(steps) {
		after := ""
		if len(s.After) > 0 {
			after = "`" + strings.Join(s.After, "`, `") + "`"
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", s.Ordinal, s.Name, s.Description, after)
	}
	return b.String()
}

// RenderPlan writes the plan, through glamour on a terminal
func RenderPlan(w io.Writer, format Format, steps []types.Step, dryRun bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"dry_run": dryRun, "steps": stepInfos(steps)})
	case FormatTerminal:
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return err
		}
		out, err := r.Render(PlanMarkdown(steps, dryRun))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := io.WriteString(w, PlanMarkdown(steps, dryRun))
		return err
	}
}
