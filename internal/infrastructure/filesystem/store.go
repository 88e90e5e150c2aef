package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"streamsplit/internal/domain/media"
)

// Store manages the uploads and per-job output directories used by the
// job-status service.
type Store struct {
	UploadsDir string
	OutputsDir string
}

// NewStore creates a filesystem adapter with configured roots.
func NewStore(uploadsDir, outputsDir string) *Store {
	return &Store{UploadsDir: uploadsDir, OutputsDir: outputsDir}
}

// EnsureDirs creates the filesystem roots used by the service.
func (s *Store) EnsureDirs() error {
	if err := os.MkdirAll(s.UploadsDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(s.OutputsDir, 0o755)
}

// ResolveUpload validates an upload file name and returns its absolute
// path inside the uploads root.
func (s *Store) ResolveUpload(raw string) (string, string, error) {
	name, err := media.NormalizeUploadName(raw)
	if err != nil {
		return "", "", err
	}
	full := filepath.Join(s.UploadsDir, name)
	if !isWithinDir(s.UploadsDir, full) {
		return "", "", errors.New("invalid file path")
	}
	return name, full, nil
}

// UploadExists reports whether a normalized upload is on disk.
func (s *Store) UploadExists(name string) bool {
	full := filepath.Join(s.UploadsDir, name)
	if !isWithinDir(s.UploadsDir, full) {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// JobOutputDir returns (and creates) the output directory for one job.
func (s *Store) JobOutputDir(jobID string) (string, error) {
	dir := filepath.Join(s.OutputsDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// JobFilePath resolves a produced file inside a job's output directory,
// refusing anything that escapes it.
func (s *Store) JobFilePath(jobID, filename string) (string, error) {
	dir := filepath.Join(s.OutputsDir, jobID)
	full := filepath.Join(dir, filepath.Base(filename))
	if !isWithinDir(dir, full) {
		return "", errors.New("invalid file path")
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", os.ErrNotExist
	}
	return full, nil
}

func isWithinDir(basePath, targetPath string) bool {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return false
	}
	return true
}
