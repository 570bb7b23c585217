package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// HomeEnv is an isolated home directory on the real filesystem
type HomeEnv struct {
	t    *testing.T
	Home string
}

// NewHomeEnv creates a temp home and points HOME at it
func NewHomeEnv(t *testing.T) *HomeEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &HomeEnv{t: t, Home: home}
}

// Path joins rel onto the home directory
func (h *HomeEnv) Path(rel string) string {
	return filepath.Join(h.Home, rel)
}

// WriteFile creates a file under home, with parent directories
func (h *HomeEnv) WriteFile(rel, content string) string {
	h.t.Helper()
	p := h.Path(rel)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(h.t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// Mkdir creates a directory under home
func (h *HomeEnv) Mkdir(rel string) string {
	h.t.Helper()
	p := h.Path(rel)
	require.NoError(h.t, os.MkdirAll(p, 0755))
	return p
}

// Symlink creates a link at rel pointing at target
func (h *HomeEnv) Symlink(target, rel string) string {
	h.t.Helper()
	p := h.Path(rel)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(h.t, os.Symlink(target, p))
	return p
}

// Readlink returns the target of the link at rel, failing the test if it
// is not a link
func (h *HomeEnv) Readlink(rel string) string {
	h.t.Helper()
	target, err := os.Readlink(h.Path(rel))
	require.NoError(h.t, err)
	return target
}

// RepoBuilder populates a fake dotfiles checkout
type RepoBuilder struct {
	h    *HomeEnv
	root string
}

// Repo starts a dotfiles checkout at rel with a .git directory
func (h *HomeEnv) Repo(rel string) *RepoBuilder {
	h.t.Helper()
	root := h.Mkdir(rel)
	require.NoError(h.t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	return &RepoBuilder{h: h, root: root}
}

// File adds a file to the checkout
func (r *RepoBuilder) File(rel, content string) *RepoBuilder {
	r.h.t.Helper()
	p := filepath.Join(r.root, rel)
	require.NoError(r.h.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(r.h.t, os.WriteFile(p, []byte(content), 0644))
	return r
}

// Root returns the checkout path
func (r *RepoBuilder) Root() string {
	return r.root
}
