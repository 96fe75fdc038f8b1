package config

import (
	"errors"
	"io/fs"
	"sync/atomic"

	"logsieve/internal/logger"
)

// Store holds the active configuration snapshot. Reload builds a complete new
// Config and swaps the pointer, so in-flight requests keep the snapshot they
// started with.
type Store struct {
	path string
	ptr  atomic.Pointer[Config]
}

// NewStore loads the initial snapshot from path (empty path or a missing file
// means defaults plus environment overrides).
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (s *Store) Current() *Config {
	return s.ptr.Load()
}

// Reload re-reads the config file, applies environment overrides and
// validation, and atomically publishes the result. A missing file is a
// warning, not an error; a present but unreadable or malformed file is.
func (s *Store) Reload() error {
	cfg := Default()

	if s.path != "" {
		loaded, err := Load(s.path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("config file not found, using defaults", "path", s.path)
		default:
			return err
		}
	}

	cfg = FromEnv(cfg)
	Validate(&cfg)
	s.ptr.Store(&cfg)
	return nil
}
