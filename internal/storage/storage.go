// Package storage lays out per-job artifacts on disk: downloaded videos,
// captured frames, subtitle tracks, outlines, and persisted results.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"slidecast/internal/services"
)

// minFreeBytes is the free-space floor required before a download starts.
const minFreeBytes = 2 << 30 // 2 GiB

// Store resolves artifact paths under a fixed root layout.
type Store struct {
	videosDir    string
	framesDir    string
	subtitlesDir string
	resultsDir   string

	statfs func(path string) (free uint64, err error)
}

// New builds a store over the four artifact directories.
func New(videosDir, framesDir, subtitlesDir, resultsDir string) *Store {
	return &Store{
		videosDir:    videosDir,
		framesDir:    framesDir,
		subtitlesDir: subtitlesDir,
		resultsDir:   resultsDir,
		statfs:       realStatfs,
	}
}

// VideosDir returns the shared download directory.
func (s *Store) VideosDir() string { return s.videosDir }

// JobFramesDir returns (and creates) the frame directory for one job.
func (s *Store) JobFramesDir(jobID string) (string, error) {
	dir := filepath.Join(s.framesDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create frames dir: %w", err)
	}
	return dir, nil
}

// FramePath names one frame file: stable, zero-padded, increasing per job.
func FramePath(framesDir string, index int) string {
	return filepath.Join(framesDir, fmt.Sprintf("frame_%04d.jpg", index))
}

// WriteSubtitle persists a subtitle artifact and returns its path. Name
// distinguishes variants of the same job ("source", "translated").
func (s *Store) WriteSubtitle(jobID, name, content string) (string, error) {
	if err := os.MkdirAll(s.subtitlesDir, 0o755); err != nil {
		return "", fmt.Errorf("create subtitles dir: %w", err)
	}
	path := filepath.Join(s.subtitlesDir, fmt.Sprintf("%s_%s.srt", jobID, name))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write subtitle %s: %w", name, err)
	}
	return path, nil
}

// WriteOutline persists the generated outline and returns its path.
func (s *Store) WriteOutline(jobID, content string) (string, error) {
	if err := os.MkdirAll(s.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(s.resultsDir, jobID+"_outline.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write outline: %w", err)
	}
	return path, nil
}

// WriteResult persists the job result document as JSON.
func (s *Store) WriteResult(jobID string, result any) (string, error) {
	if err := os.MkdirAll(s.resultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	path := filepath.Join(s.resultsDir, jobID+".json")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

// CleanupJob removes every artifact the job produced. The video download and
// its raw subtitle tracks are kept; they live in a shared directory keyed by
// video id, not job id.
func (s *Store) CleanupJob(jobID string) error {
	targets := []string{
		filepath.Join(s.framesDir, jobID),
		filepath.Join(s.resultsDir, jobID+".json"),
		filepath.Join(s.resultsDir, jobID+"_outline.md"),
	}
	matches, _ := filepath.Glob(filepath.Join(s.subtitlesDir, jobID+"_*.srt"))
	targets = append(targets, matches...)

	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	}
	return nil
}

// CheckFreeSpace verifies the videos volume has room for a download.
func (s *Store) CheckFreeSpace() error {
	if err := os.MkdirAll(s.videosDir, 0o755); err != nil {
		return fmt.Errorf("create videos dir: %w", err)
	}
	free, err := s.statfs(s.videosDir)
	if err != nil {
		return fmt.Errorf("statfs %s: %w", s.videosDir, err)
	}
	if free < minFreeBytes {
		return services.Wrap(services.ErrValidation, "storage", "preflight",
			fmt.Sprintf("only %d MiB free, need %d MiB", free>>20, uint64(minFreeBytes)>>20), nil)
	}
	return nil
}

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
