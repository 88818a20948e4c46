package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects on disk below dir and serves them from baseURL.
type Local struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

func NewLocal(dir, baseURL string, logger *slog.Logger) (*Local, error) {
	if dir == "" {
		return nil, errors.New("local blob dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("service", "blob", "backend", "local"),
	}, nil
}

// Dir is the root directory, for serving objects over HTTP.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(ctx context.Context, key string, r io.Reader, _ string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit object: %w", err)
	}

	l.logger.Debug("object stored", "key", key)
	return nil
}

func (l *Local) PublicURL(key string) string {
	return l.baseURL + "/" + strings.TrimLeft(key, "/")
}

// path resolves key below the root and rejects keys that would escape it.
func (l *Local) path(key string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, filepath.FromSlash(key)), nil
}
