package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// UniquePath returns path if nothing exists there, otherwise the first
// "name (N).ext" variant that is still free.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// CopyFile copies src into destDir under its own base name, creating the
// directory if needed. Name collisions are resolved with UniquePath so an
// existing file is never overwritten. Returns the path written.
func CopyFile(ctx context.Context, src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Errorf("creating destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", errors.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	dst := UniquePath(filepath.Join(destDir, filepath.Base(src)))
	out, err := os.Create(dst)
	if err != nil {
		return "", errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst) // don't leave a partial copy behind
		return "", errors.Errorf("copying content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", errors.Errorf("closing destination file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Msg("copied file")
	return dst, nil
}
