package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Load reads the control panel at path. A missing or unparseable file is
// logged and replaced by Default; Load never fails. When an existing file
// could not be used the store refuses to save, so the file is never
// overwritten with defaults.
func Load(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &Store{path: path, logger: logger}
	cfg, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("config file not found, using defaults", zap.String("path", path))
		cfg = Default()
	case err != nil:
		logger.Warn("config file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		cfg = Default()
		store.loadErr = err
	}
	Normalize(&cfg)
	store.cfg = &cfg
	return store
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// writeAtomic writes data next to path and renames it into place so readers
// never observe a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".control_panel-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
