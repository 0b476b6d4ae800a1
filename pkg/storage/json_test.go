package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestReadJSON(t *testing.T) {
	t.Run("missing_file_is_not_an_error", func(t *testing.T) {
		dir := t.TempDir()

		var got testPayload
		ok, err := ReadJSON(filepath.Join(dir, "nope.json"), &got)
		require.NoError(t, err, "reading missing file")
		assert.False(t, ok, "missing file should report not ok")
		assert.Equal(t, testPayload{}, got, "payload should be untouched")
	})

	t.Run("invalid_json_fails", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		var got testPayload
		_, err := ReadJSON(path, &got)
		require.Error(t, err, "invalid json should fail")
		assert.Contains(t, err.Error(), "parsing bad.json")
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "data", "payload.json")

		want := testPayload{Name: "laser", Count: 3}
		require.NoError(t, WriteJSON(path, want), "writing payload")

		var got testPayload
		ok, err := ReadJSON(path, &got)
		require.NoError(t, err, "reading payload back")
		assert.True(t, ok, "file should exist")
		assert.Equal(t, want, got, "payload should round trip")
	})

	t.Run("leaves_no_temp_file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "payload.json")
		require.NoError(t, WriteJSON(path, testPayload{Name: "x"}))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "only the target file should remain")
		assert.Equal(t, "payload.json", entries[0].Name())
	})
}
