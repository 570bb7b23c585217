package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// BannerTitle is shown at the top of the screen during a run
const BannerTitle = "archup"

// ConsoleReporter prints pipeline progress. Pacing and screen clearing
// only apply to terminal output.
type ConsoleReporter struct {
	out         io.Writer
	format      Format
	opts        config.Display
	sleep       func(time.Duration)
	clear       func()
	encoder     *json.Encoder
	bannerShown bool
}

// ReporterOption configures a ConsoleReporter
type ReporterOption func(*ConsoleReporter)

// WithSleep replaces time.Sleep for pacing
func WithSleep(fn func(time.Duration)) ReporterOption {
	return func(r *ConsoleReporter) { r.sleep = fn }
}

// WithClear replaces the terminal screen clear
func WithClear(fn func()) ReporterOption {
	return func(r *ConsoleReporter) { r.clear = fn }
}

// NewConsoleReporter creates a reporter writing to out. format must be
// resolved already; FormatAuto is treated as text.
func NewConsoleReporter(out io.Writer, format Format, opts config.Display, options ...ReporterOption) *ConsoleReporter {
	r := &ConsoleReporter{
		out:    out,
		format: format,
		opts:   opts,
		sleep:  time.Sleep,
	}
	r.clear = func() { termenv.NewOutput(out).ClearScreen() }
	for _, o := range options {
		o(r)
	}
	if format == FormatJSON {
		r.encoder = json.NewEncoder(out)
	}
	return r
}

// event is one line of JSON progress output
type event struct {
	Event    string   `json:"event"`
	Step     string   `json:"step,omitempty"`
	Ordinal  int      `json:"ordinal,omitempty"`
	Total    int      `json:"total,omitempty"`
	Elapsed  string   `json:"elapsed,omitempty"`
	Error    string   `json:"error,omitempty"`
	State    string   `json:"state,omitempty"`
	Complete []string `json:"completed,omitempty"`
}

func (r *ConsoleReporter) emit(e event) {
	_ = r.encoder.Encode(e)
}

// StepStarted implements pipeline.Reporter
func (r *ConsoleReporter) StepStarted(step types.Step, total int) {
	if r.format == FormatJSON {
		r.emit(event{Event: "step_started", Step: step.Name, Ordinal: step.Ordinal, Total: total})
		return
	}

	p := painter(r.format.Styled())
	if r.format.Styled() && r.opts.ClearScreen {
		r.clear()
		r.bannerShown = false
	}
	if r.opts.Banner && !r.bannerShown {
		r.banner()
		r.bannerShown = true
	}

	counter := p.paint("Counter", fmt.Sprintf("[%d/%d]", step.Ordinal, total))
	fmt.Fprintf(r.out, "%s %s %s\n", counter, p.paint("Step", step.Description), p.paint("Muted", "("+step.Name+")"))
}

func (r *ConsoleReporter) banner() {
	if r.format.Styled() {
		fmt.Fprintln(r.out, pterm.DefaultHeader.WithFullWidth().Sprint(BannerTitle))
		return
	}
	fmt.Fprintf(r.out, "== %s ==\n", BannerTitle)
}

// StepSucceeded implements pipeline.Reporter
func (r *ConsoleReporter) StepSucceeded(step types.Step, elapsed time.Duration) {
	if r.format == FormatJSON {
		r.emit(event{Event: "step_succeeded", Step: step.Name, Ordinal: step.Ordinal, Elapsed: elapsed.String()})
		return
	}

	p := painter(r.format.Styled())
	fmt.Fprintf(r.out, "%s %s %s\n", p.paint("Success", "✓"), step.Name, p.paint("Muted", elapsed.Round(time.Millisecond).String()))
	if r.format.Styled() && r.opts.Pace > 0 {
		r.sleep(r.opts.Pace)
	}
}

// StepFailed implements pipeline.Reporter
func (r *ConsoleReporter) StepFailed(step types.Step, err error) {
	if r.format == FormatJSON {
		r.emit(event{Event: "step_failed", Step: step.Name, Ordinal: step.Ordinal, Error: err.Error()})
		return
	}

	p := painter(r.format.Styled())
	fmt.Fprintf(r.out, "%s %s\n", p.paint("Error", "✗"), p.paint("Error", step.Name+" failed"))
}

// RunFinished implements pipeline.Reporter
func (r *ConsoleReporter) RunFinished(result types.PipelineResult) {
	if r.format == FormatJSON {
		r.emit(event{Event: "run_finished", State: string(result.State), Complete: result.Completed, Elapsed: result.Duration.String()})
		return
	}

	p := painter(r.format.Styled())
	if result.Failure == nil {
		fmt.Fprintln(r.out, p.paint("Success", fmt.Sprintf("All %d steps completed in %s", len(result.Completed), result.Duration.Round(time.Second))))
		return
	}

	fmt.Fprintln(r.out, p.paint("Error", fmt.Sprintf("Aborted at %s", result.Failure.Step)))
	if len(result.Completed) > 0 {
		fmt.Fprintln(r.out, p.paint("Muted", "Completed before the failure: "+strings.Join(result.Completed, ", ")))
	}
}

// FetchProgress returns a fetch progress callback that prints one line per
// staged artifact
func FetchProgress(out io.Writer, format Format) func(int, types.FetchEntry, types.FetchStatus) {
	p := painter(format.Styled())
	enc := json.NewEncoder(out)
	return func(i int, entry types.FetchEntry, status types.FetchStatus) {
		if format == FormatJSON {
			if status != types.FetchPending {
				_ = enc.Encode(map[string]string{"event": "fetch_" + string(status), "url": entry.SourceURL, "path": entry.DestinationPath})
			}
			return
		}
		switch status {
		case types.FetchFetched:
			fmt.Fprintf(out, "%s %s\n", p.paint("Success", "↓"), entry.DestinationPath)
		case types.FetchFailed:
			fmt.Fprintf(out, "%s %s\n", p.paint("Error", "✗"), entry.SourceURL)
		}
	}
}
