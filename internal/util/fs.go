package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MakeTempWorkdir creates a unique temp directory under $TMPDIR/clipcast.
func MakeTempWorkdir(prefix string) (string, error) {
	base := filepath.Join(os.TempDir(), "clipcast")
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(base, prefix+"-")
	if err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// SpoolToTempFile copies r into a temp .mp4 file and returns its path.
// Used when the video source is stdin. The caller removes the file.
func SpoolToTempFile(r io.Reader) (string, error) {
	dir, err := MakeTempWorkdir("stdin")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "video.mp4")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("spool stdin: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.RemoveAll(dir)
		return "", err
	}
	return path, nil
}
