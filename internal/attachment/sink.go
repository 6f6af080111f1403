// Package attachment stores files uploaded alongside intake requests.
package attachment

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// Sink writes attachment payloads under keys namespaced by the owning record id.
type Sink struct {
	fs afero.Fs
}

// NewSink returns a sink rooted at dir on the OS filesystem.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	return NewSinkFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewSinkFs returns a sink over an arbitrary filesystem.
func NewSinkFs(fs afero.Fs) *Sink {
	return &Sink{fs: fs}
}

// Key builds the storage key for a file attached to a record.
func Key(recordID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "attachment"
	}
	return recordID + "_" + base
}

// Put stores content under Key(recordID, filename) and returns the key.
func (s *Sink) Put(recordID, filename string, content io.Reader) (string, error) {
	key := Key(recordID, filename)
	f, err := s.fs.Create(key)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment %s: %w", key, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write attachment %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close attachment %s: %w", key, err)
	}
	return key, nil
}

// Open returns a reader for a stored attachment.
func (s *Sink) Open(key string) (io.ReadCloser, error) {
	f, err := s.fs.Open(key)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment %s: %w", key, err)
	}
	return f, nil
}
