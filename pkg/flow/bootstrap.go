package flow

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/fetch"
	"github.com/arthur-debert/archup/pkg/logging"
	"golang.org/x/sys/unix"
)

// Bootstrap runs preflight, stages the installer artifacts and replaces
// the archup process with the installer. It only returns on failure, or in
// dry-run mode where nothing is written and no handoff happens.
func Bootstrap(ctx context.Context, opts Options) error {
	opts = opts.withDefaults()
	logger := logging.GetLogger("flow")
	cfg := opts.Config.Fetch

	if _, err := Preflight(ctx, opts); err != nil {
		return err
	}

	manifest, err := fetch.BuildManifest(cfg.BaseURL, cfg.Files)
	if err != nil {
		return err
	}

	fetchOpts := []fetch.Option{fetch.WithFS(opts.FS)}
	if opts.Progress != nil {
		fetchOpts = append(fetchOpts, fetch.WithProgress(opts.Progress))
	}
	if err := fetch.New(fetchOpts...).Fetch(ctx, manifest, cfg.WorkDir); err != nil {
		return err
	}

	target := filepath.Join(cfg.WorkDir, filepath.FromSlash(cfg.Handoff))
	if opts.DryRun {
		logger.Info().Str("path", target).Msg("Dry run mode - skipping handoff")
		return nil
	}
	return Handoff(opts, target)
}

// Handoff makes path executable and execs it with no arguments. archup
// does not supervise the installer: on success this never returns.
func Handoff(opts Options, path string) error {
	opts = opts.withDefaults()
	logger := logging.GetLogger("flow")

	if err := opts.FS.Chmod(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrHandoffFailed, "cannot make %s executable", path).
			WithDetail("path", path)
	}

	exec := opts.Exec
	if exec == nil {
		exec = unix.Exec
	}

	logger.Info().Str("path", path).Msg("Handing off to installer")
	if err := exec(path, []string{path}, os.Environ()); err != nil {
		return errors.Wrapf(err, errors.ErrHandoffFailed, "cannot start %s", path).
			WithDetail("path", path)
	}
	return nil
}
