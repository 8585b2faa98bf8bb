package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// FileStore implements a registry store on the local file system. Each
// target owns a subdirectory holding one file per setting value, and the
// "active" file at the base directory names the active target. Intended
// for local development and tests.
type FileStore struct {
	baseDir     string
	log         *slog.Logger
	locationURI string
}

// activeFileName is the base-directory file naming the active target.
const activeFileName = "active"

// NewFileStore creates a file-backed registry store rooted at baseDir,
// creating the directory if needed.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// ResolveActiveTarget reads the active-target marker file. A missing or
// empty marker means no target is active and the store is unavailable for
// reconciliation.
func (s *FileStore) ResolveActiveTarget(ctx context.Context) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, activeFileName))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: no active target in %s", interfaces.ErrStoreUnavailable, s.baseDir)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	target := strings.TrimSpace(string(data))
	if target == "" {
		return "", fmt.Errorf("%w: active target marker is empty", interfaces.ErrStoreUnavailable)
	}
	return target, nil
}

// SetActiveTarget writes the active-target marker. Used by provisioning
// tooling and tests; reconciliation itself never changes the marker.
func (s *FileStore) SetActiveTarget(target string) error {
	return os.WriteFile(filepath.Join(s.baseDir, activeFileName), []byte(target+"\n"), 0644)
}

// ReadValue reads one setting value file. A missing file reports an absent
// value, not an error.
func (s *FileStore) ReadValue(ctx context.Context, target, name string) (interfaces.RawValue, error) {
	path := s.valuePath(target, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return interfaces.AbsentRaw(), nil
	}
	if err != nil {
		return interfaces.RawValue{}, fmt.Errorf("failed to read value file: %w", err)
	}

	s.log.Debug("Read value from file",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return interfaces.StringRaw(strings.TrimSuffix(string(data), "\n")), nil
}

// WriteValue stores one encoded setting value in the target's directory.
func (s *FileStore) WriteValue(ctx context.Context, target, name, encoded string) error {
	path := s.valuePath(target, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrWriteFailed, err)
	}
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0644); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrWriteFailed, err)
	}

	s.log.Debug("Wrote value to file", slog.String("path", path))
	return nil
}

// LocationURI returns the URI this store was created from.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

func (s *FileStore) valuePath(target, name string) string {
	return filepath.Join(s.baseDir, target, name)
}
