// Package detect inspects the host before any flow mutates it. Detection
// is read-only apart from a single bounded HTTP reachability probe, and it
// never prompts: deciding what to do with the findings belongs to the flow.
package detect

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/archup/pkg/config"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/rs/zerolog"
)

// Detector computes an EnvironmentContext
type Detector struct {
	cfg      config.Detect
	fs       types.FS
	lookPath func(string) (string, error)
	geteuid  func() int
	client   *http.Client
	logger   zerolog.Logger
}

// Option configures a Detector
type Option func(*Detector)

// WithFS sets the filesystem used for marker checks
func WithFS(fs types.FS) Option {
	return func(d *Detector) { d.fs = fs }
}

// WithLookPath replaces exec.LookPath
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Detector) { d.lookPath = fn }
}

// WithEUID replaces os.Geteuid
func WithEUID(fn func() int) Option {
	return func(d *Detector) { d.geteuid = fn }
}

// WithHTTPClient sets the client used by the reachability probe
func WithHTTPClient(c *http.Client) Option {
	return func(d *Detector) { d.client = c }
}

// New creates a Detector for the given detection settings
func New(cfg config.Detect, opts ...Option) *Detector {
	d := &Detector{
		cfg:      cfg,
		fs:       filesystem.NewOS(),
		lookPath: exec.LookPath,
		geteuid:  os.Geteuid,
		client:   http.DefaultClient,
		logger:   logging.GetLogger("detect"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect inspects the host. The network probe only runs when every
// required tool is present.
func (d *Detector) Detect(ctx context.Context) types.EnvironmentContext {
	done := logging.LogOperationStart(d.logger, "detect")
	defer done()

	env := types.EnvironmentContext{
		IsPrivileged:         d.geteuid() == 0,
		IsLiveMedium:         d.exists(d.cfg.LiveMarker),
		TargetDistroDetected: d.exists(d.cfg.DistroMarker),
		RequiredToolsPresent: make(map[string]bool, len(d.cfg.RequiredTools)),
		Firmware:             types.FirmwareBIOS,
	}
	if d.exists(d.cfg.EFIDir) {
		env.Firmware = types.FirmwareUEFI
	}

	for _, tool := range d.cfg.RequiredTools {
		path, err := d.lookPath(tool)
		env.RequiredToolsPresent[tool] = err == nil
		d.logger.Debug().Str("tool", tool).Str("path", path).Bool("present", err == nil).Msg("Checked required tool")
	}

	if missing := env.MissingTools(); len(missing) > 0 {
		d.logger.Info().Strs("missing", missing).Msg("Skipping network probe: required tools missing")
		return env
	}

	env.NetworkProbed = true
	env.NetworkReachable = d.probe(ctx)

	d.logger.Debug().
		Bool("privileged", env.IsPrivileged).
		Bool("live", env.IsLiveMedium).
		Bool("distro", env.TargetDistroDetected).
		Bool("network", env.NetworkReachable).
		Str("firmware", string(env.Firmware)).
		Msg("Environment detected")
	return env
}

func (d *Detector) exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := d.fs.Stat(path)
	return err == nil
}

// probe treats any HTTP response as reachable; only transport failures
// and the timeout count as unreachable.
func (d *Detector) probe(ctx context.Context) bool {
	timeout := d.cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.ProbeURL, nil)
	if err != nil {
		d.logger.Warn().Err(err).Str("url", d.cfg.ProbeURL).Msg("Invalid probe URL")
		return false
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Debug().Err(err).Str("url", d.cfg.ProbeURL).Msg("Network probe failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	d.logger.Debug().Int("status", resp.StatusCode).Str("url", d.cfg.ProbeURL).Msg("Network probe answered")
	return true
}
