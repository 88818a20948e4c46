package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/garnizeh/cpdtrack/internal/config"
)

func baseConfig(secret string) *config.Config {
	return &config.Config{
		Addr:          ":8080",
		JWTSecret:     secret,
		APITimeout:    5 * time.Second,
		DatabasePath:  "cpd.db",
		TokenDuration: 1 * time.Hour,
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("CPD_ENV", "production")

	if err := baseConfig(config.DefaultJWTSecret).Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	t.Setenv("CPD_ENV", "development")

	if err := baseConfig(config.DefaultJWTSecret).Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_InsecureJWT_EnvUnset(t *testing.T) {
	t.Setenv("CPD_ENV", "")

	if err := baseConfig(config.DefaultJWTSecret).Validate(); err == nil {
		t.Fatalf("expected validation error for insecure jwt secret, got nil")
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	cfg := baseConfig("strongsecret")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}

	if cfg.Storage.Backend != "local" || cfg.Storage.LocalDir == "" {
		t.Fatalf("expected local storage defaults, got %+v", cfg.Storage)
	}
	if cfg.Storage.PublicBaseURL != "http://localhost:8080/attachments" {
		t.Fatalf("unexpected PublicBaseURL: %q", cfg.Storage.PublicBaseURL)
	}
	if cfg.Auth.VerifyTokenDuration != 24*time.Hour {
		t.Fatalf("unexpected VerifyTokenDuration: %v", cfg.Auth.VerifyTokenDuration)
	}
	if cfg.Auth.LoginURL != "/auth" {
		t.Fatalf("unexpected LoginURL: %q", cfg.Auth.LoginURL)
	}
	if cfg.Logs.RecentLimit != 5 {
		t.Fatalf("unexpected RecentLimit: %d", cfg.Logs.RecentLimit)
	}
	if cfg.Logs.ValidateOnEdit {
		t.Fatalf("edit validation must be off by default")
	}
	if cfg.Google.Enabled() {
		t.Fatalf("google sign-in must be disabled without credentials")
	}
}

func TestValidate_GCSRequiresBucket(t *testing.T) {
	cfg := baseConfig("strongsecret")
	cfg.Storage.Backend = "gcs"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for gcs backend without bucket")
	}

	cfg.Storage.Bucket = "cpd-attachments"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed with bucket set: %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := baseConfig("strongsecret")
	cfg.Storage.Backend = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown storage backend")
	}
}

func TestValidate_GoogleRedirectDefault(t *testing.T) {
	cfg := baseConfig("strongsecret")
	cfg.Google = config.GoogleConfig{ClientID: "id", ClientSecret: "secret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Google.RedirectURL != "http://localhost:8080/v1/auth/google/callback" {
		t.Fatalf("unexpected RedirectURL: %q", cfg.Google.RedirectURL)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CPD_ADDR", "")
	t.Setenv("CPD_JWT_SECRET", "")
	t.Setenv("CPD_DATABASE_PATH", "")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != config.DefaultJWTSecret {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.DatabasePath != "cpd.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "cpd.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 1*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 1*time.Hour)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\n" +
		"logs:\n  validate_on_edit: true\nstorage:\n  backend: gcs\n  bucket: proofs\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if !cfg.Logs.ValidateOnEdit {
		t.Fatalf("expected logs.validate_on_edit from file")
	}
	if cfg.Storage.Backend != "gcs" || cfg.Storage.Bucket != "proofs" {
		t.Fatalf("unexpected storage: %+v", cfg.Storage)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("addr: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestGoogleConfig_Enabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.GoogleConfig
		want bool
	}{
		{name: "Empty", cfg: config.GoogleConfig{}, want: false},
		{name: "IDOnly", cfg: config.GoogleConfig{ClientID: "id"}, want: false},
		{name: "SecretOnly", cfg: config.GoogleConfig{ClientSecret: "secret"}, want: false},
		{name: "Both", cfg: config.GoogleConfig{ClientID: "id", ClientSecret: "secret"}, want: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.cfg.Enabled(); got != c.want {
				t.Fatalf("Enabled() = %v, want %v", got, c.want)
			}
		})
	}
}
