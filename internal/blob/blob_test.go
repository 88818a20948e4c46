package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/cpdtrack/internal/config"
)

func TestKey(t *testing.T) {
	ts := time.UnixMilli(1718000000123)

	cases := []struct {
		name     string
		filename string
		want     string
	}{
		{"pdf", "certificate.pdf", "u1/1718000000123.pdf"},
		{"upper ext", "Scan.JPG", "u1/1718000000123.jpg"},
		{"no ext", "notes", "u1/1718000000123"},
		{"nested name", "dir/report.final.docx", "u1/1718000000123.docx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key("u1", tc.filename, ts); got != tc.want {
				t.Fatalf("Key(%q) = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

func TestLocal_Upload(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "http://localhost:8080/attachments/", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	ctx := context.Background()
	if err := l.Upload(ctx, "u1/1.pdf", strings.NewReader("proof"), "application/pdf"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "u1", "1.pdf"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(b) != "proof" {
		t.Fatalf("unexpected content %q", b)
	}

	if got := l.PublicURL("u1/1.pdf"); got != "http://localhost:8080/attachments/u1/1.pdf" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/attachments", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	for _, key := range []string{"", "../x.pdf", "u1/../../x.pdf"} {
		if err := l.Upload(context.Background(), key, strings.NewReader("x"), ""); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestLocal_CanceledContext(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "/attachments", nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Upload(ctx, "u1/2.pdf", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestGCS_PublicURL(t *testing.T) {
	g := &GCS{bucket: "proofs"}
	if got := g.PublicURL("/u1/1.pdf"); got != "https://storage.googleapis.com/proofs/u1/1.pdf" {
		t.Fatalf("unexpected url %q", got)
	}

	g.cdnDomain = "cdn.example.com"
	if got := g.PublicURL("u1/1.pdf"); got != "https://cdn.example.com/u1/1.pdf" {
		t.Fatalf("unexpected cdn url %q", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("u/1.PDF"); got != "application/pdf" {
		t.Fatalf("got %q", got)
	}
	if got := contentTypeForKey("u/1.bin"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	s, err := New(context.Background(), config.StorageConfig{Backend: "local", LocalDir: t.TempDir(), PublicBaseURL: "/a"}, nil)
	if err != nil {
		t.Fatalf("New local: %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", s)
	}

	if _, err := New(context.Background(), config.StorageConfig{Backend: "ftp"}, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
