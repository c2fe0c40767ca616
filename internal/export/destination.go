// Package export delivers the server's contact export to local files and
// S3-compatible buckets, once or on a schedule.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the name the export is saved under when no path is given.
const DefaultFileName = "contacts.csv"

// Destination is the interface for an export target (file, S3, etc.).
type Destination interface {
	// Write stores the CSV payload at the destination.
	Write(ctx context.Context, data []byte) error
}

// FileDestination writes the export to a local file. The file is replaced
// atomically so readers never see a partial export.
type FileDestination struct {
	Path string
}

// NewFileDestination returns a destination writing to path, or to
// DefaultFileName in the working directory when path is empty. A path naming
// an existing directory gets DefaultFileName appended.
func NewFileDestination(path string) *FileDestination {
	if path == "" {
		path = DefaultFileName
	} else if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &FileDestination{Path: path}
}

func (d *FileDestination) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(d.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".contacts-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.Path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

func (d *FileDestination) String() string { return "file:" + d.Path }
