package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gracechapel/churchweb/config"
)

// ErrFileTooLarge is returned when an upload exceeds its category limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// SaveLocalFile writes an upload to the local public directory under a
// date-based subfolder and returns its public URL and filesystem path. The
// write goes through a limited reader so a lying Content-Length cannot blow
// past the limit.
func SaveLocalFile(src io.Reader, filename string, limit int64) (string, string, error) {
	cfg := config.Get()
	now := time.Now()
	year := now.Format("2006")
	month := now.Format("01")
	day := now.Format("02")
	baseDir := filepath.Join(cfg.UploadDir, year, month, day)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload directory: %w", err)
	}

	dstPath := filepath.Join(baseDir, filename)
	out, err := os.Create(dstPath)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: src, N: limit + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	if written > limit {
		_ = out.Close()
		_ = os.Remove(dstPath)
		return "", "", ErrFileTooLarge
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", year, month, day, filename)
	absPath, err := filepath.Abs(dstPath)
	if err != nil {
		absPath = dstPath
	}
	return relURL, absPath, nil
}

// DeleteLocalFile removes a stored file. Missing files are not an error.
func DeleteLocalFile(fsPath string) error {
	if fsPath == "" {
		return nil
	}
	if err := os.Remove(fsPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
