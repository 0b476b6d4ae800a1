// Package testutils has small helpers shared by tests across packages.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// SetupTestLogger returns a context carrying a zerolog logger that writes
// to the test log.
func SetupTestLogger(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// WriteFile writes content to path, creating parent directories first.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating parent dirs")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing %s", path)
}
