package archup

import (
	"os"
	"strings"
	"text/template"

	"github.com/arthur-debert/archup/pkg/display"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// helpStyled is decided once: help goes to stdout, and NO_COLOR or a pipe
// turn styling off
var helpStyled = display.DetectFormat(os.Stdout).Styled()

func formatBold(s string) string {
	if !helpStyled {
		return s
	}
	return pterm.Bold.Sprint(s)
}

func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds the formatting functions used by
// msgs/usage-template.txt
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}
