package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// ReadJSON loads the JSON file at path into v. A missing file is not an
// error: v is left untouched and ok is false.
func ReadJSON(path string, v any) (ok bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// WriteJSON writes v to path as indented JSON, creating parent directories
// as needed. The write is atomic: content goes to a temp file first and is
// renamed over the target.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
