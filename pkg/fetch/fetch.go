// Package fetch stages remote installer artifacts into a working
// directory. Entries are fetched strictly in manifest order and the first
// failure stops the run: nothing after it is requested or written.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/arthur-debert/archup/pkg/filesystem"
	"github.com/arthur-debert/archup/pkg/logging"
	"github.com/arthur-debert/archup/pkg/paths"
	"github.com/arthur-debert/archup/pkg/types"
	"github.com/rs/zerolog"
)

// ProgressFunc observes per-entry status transitions
type ProgressFunc func(index int, entry types.FetchEntry, status types.FetchStatus)

// Fetcher downloads manifests
type Fetcher struct {
	client   *http.Client
	fs       types.FS
	progress ProgressFunc
	logger   zerolog.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithFS sets the filesystem artifacts are written to
func WithFS(fs types.FS) Option {
	return func(f *Fetcher) { f.fs = fs }
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(f *Fetcher) { f.progress = fn }
}

// New creates a Fetcher
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: http.DefaultClient,
		fs:     filesystem.NewOS(),
		logger: logging.GetLogger("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// BuildManifest joins each relative file onto baseURL. Destinations that
// would escape the working directory are rejected.
func BuildManifest(baseURL string, files []string) (types.FetchManifest, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid fetch base URL %q", baseURL).
			WithDetail("url", baseURL)
	}

	manifest := make(types.FetchManifest, 0, len(files))
	for _, file := range files {
		clean := path.Clean(strings.TrimSpace(file))
		if file == "" || path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			return nil, errors.Newf(errors.ErrInvalidInput, "fetch destination %q escapes the working directory", file).
				WithDetail("destination", file)
		}

		source := *base
		source.Path = strings.TrimSuffix(base.Path, "/") + "/" + clean
		manifest = append(manifest, types.FetchEntry{
			SourceURL:       source.String(),
			DestinationPath: filepath.FromSlash(clean),
			Description:     clean,
		})
	}
	return manifest, nil
}

// Fetch stages every entry under workDir, in order
func (f *Fetcher) Fetch(ctx context.Context, manifest types.FetchManifest, workDir string) error {
	done := logging.LogOperationStart(f.logger, "fetch")
	defer done()

	for i, entry := range manifest {
		dest := filepath.Join(workDir, entry.DestinationPath)
		if !paths.IsWithin(workDir, dest) {
			return errors.Newf(errors.ErrInvalidInput, "fetch destination %q escapes the working directory", entry.DestinationPath).
				WithDetail("destination", entry.DestinationPath)
		}

		f.report(i, entry, types.FetchPending)
		if err := f.fetchOne(ctx, entry, dest); err != nil {
			f.report(i, entry, types.FetchFailed)
			f.logger.Error().Err(err).Str("url", entry.SourceURL).Msg("Fetch failed")
			return errors.Wrapf(err, errors.ErrFetchFailed, "failed to fetch %s", entry.SourceURL).
				WithDetail("url", entry.SourceURL).
				WithDetail("destination", dest)
		}
		f.report(i, entry, types.FetchFetched)
		f.logger.Info().Str("url", entry.SourceURL).Str("destination", dest).Msg("Fetched")
	}
	return nil
}

func (f *Fetcher) fetchOne(ctx context.Context, entry types.FetchEntry, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.SourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected HTTP status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	dir := filepath.Dir(dest)
	if err := f.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(dest)+".archup-tmp")
	if err := f.fs.WriteFile(tmp, body, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if err := f.fs.Rename(tmp, dest); err != nil {
		_ = f.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s into place", dest)
	}
	return nil
}

func (f *Fetcher) report(i int, entry types.FetchEntry, status types.FetchStatus) {
	if f.progress != nil {
		f.progress(i, entry, status)
	}
}
