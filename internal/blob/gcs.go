package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/garnizeh/cpdtrack/internal/config"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGCS uses application default credentials.
func NewGCS(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger, opts ...option.ClientOption) (*GCS, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	l := logger.With("service", "blob", "backend", "gcs")
	l.Info("object storage initialized", "bucket", cfg.Bucket, "cdn_domain", cfg.CDNDomain)

	return &GCS{client: client, bucket: cfg.Bucket, cdnDomain: cfg.CDNDomain, timeout: timeout, logger: l}, nil
}

func (g *GCS) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = contentTypeForKey(key)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (g *GCS) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if g.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", g.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, key)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
