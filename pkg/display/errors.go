package display

import (
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
)

// identifiers are printed first, in this order, when present
var identifiers = []string{"step", "tool", "url", "destination", "path", "command", "exit_status"}

// RenderError prints err followed by the details collected from its wrap
// chain. Outer details shadow inner ones with the same key.
func RenderError(w io.Writer, err error, styled bool) {
	if err == nil {
		return
	}
	p := painter(styled)
	fmt.Fprintln(w, p.paint("Error", fmt.Sprintf("Error: %v", err)))

	details := collectDetails(err)
	for _, key := range orderedKeys(details) {
		switch v := details[key].(type) {
		case []string:
			for _, item := range v {
				fmt.Fprintln(w, p.paint("Detail", "- "+item))
			}
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			fmt.Fprintln(w, p.paint("Detail", key+": "+v))
		default:
			fmt.Fprintln(w, p.paint("Detail", fmt.Sprintf("%s: %v", key, v)))
		}
	}
}

func collectDetails(err error) map[string]interface{} {
	details := make(map[string]interface{})
	for err != nil {
		var ae *errors.ArchupError
		if !stderrors.As(err, &ae) {
			break
		}
		for k, v := range ae.Details {
			if _, seen := details[k]; !seen {
				details[k] = v
			}
		}
		err = ae.Wrapped
	}
	return details
}

func orderedKeys(details map[string]interface{}) []string {
	var keys []string
	for _, k := range identifiers {
		if _, ok := details[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range details {
		if !slices.Contains(identifiers, k) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
