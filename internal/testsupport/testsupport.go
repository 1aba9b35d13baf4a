// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"slidecast/internal/config"
	"slidecast/internal/jobstore"
	"slidecast/internal/storage"
)

// NewConfig returns a validated configuration rooted in a per-test temp dir.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	root := t.TempDir()
	cfg.Paths.StorageDir = filepath.Join(root, "store")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// MustOpenStore opens a job store under the config's log dir and closes it
// when the test finishes.
func MustOpenStore(t *testing.T, cfg *config.Config) *jobstore.Store {
	t.Helper()
	store, err := jobstore.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open job store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// NewArtifactStore builds a storage layout matching the config's directories.
func NewArtifactStore(cfg *config.Config) *storage.Store {
	return storage.New(cfg.VideosDir(), cfg.FramesDir(), cfg.SubtitlesDir(), cfg.ResultsDir())
}
