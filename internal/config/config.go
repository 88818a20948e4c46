package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only acceptable when CPD_ENV=development.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	Auth           AuthConfig    `yaml:"auth"`
	Storage        StorageConfig `yaml:"storage"`
	Logs           LogsConfig    `yaml:"logs"`
	Google         GoogleConfig  `yaml:"google"`
	Log            LogConfig     `yaml:"log"`
}

type AuthConfig struct {
	RequireVerifiedEmail bool          `yaml:"require_verified_email"`
	VerifyTokenDuration  time.Duration `yaml:"verify_token_duration"`
	// PublicURL is the externally reachable base of this API, used in verification links.
	PublicURL string `yaml:"public_url"`
	// LoginURL is where a successful email verification redirects.
	LoginURL string `yaml:"login_url"`
}

type StorageConfig struct {
	Backend       string        `yaml:"backend"` // local | gcs
	LocalDir      string        `yaml:"local_dir"`
	PublicBaseURL string        `yaml:"public_base_url"`
	Bucket        string        `yaml:"bucket"`
	CDNDomain     string        `yaml:"cdn_domain"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
}

type LogsConfig struct {
	// ValidateOnEdit applies the daily hour limit to edits, excluding the edited
	// entry's previous hours. Off by default.
	ValidateOnEdit bool `yaml:"validate_on_edit"`
	RecentLimit    int  `yaml:"recent_limit"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	// SuccessURL receives the issued token as a query parameter after sign in.
	SuccessURL string `yaml:"success_url"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:          getEnv("CPD_ADDR", ":8080"),
		JWTSecret:     getEnv("CPD_JWT_SECRET", DefaultJWTSecret),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("CPD_DATABASE_PATH", "cpd.db"),
		TokenDuration: tokenDuration,
		Storage: StorageConfig{
			Backend: getEnv("CPD_STORAGE_BACKEND", "local"),
			Bucket:  getEnv("CPD_STORAGE_BUCKET", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("CPD_GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("CPD_GOOGLE_CLIENT_SECRET", ""),
		},
		Log: LogConfig{
			Level:  getEnv("CPD_LOG_LEVEL", "info"),
			Format: getEnv("CPD_LOG_FORMAT", "json"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills unset optional values and rejects unusable configurations.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == DefaultJWTSecret && !IsDevelopment() {
		return errors.New("jwt_secret uses the insecure default; set CPD_JWT_SECRET or CPD_ENV=development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}

	if c.Auth.VerifyTokenDuration <= 0 {
		c.Auth.VerifyTokenDuration = 24 * time.Hour
	}
	if c.Auth.PublicURL == "" {
		c.Auth.PublicURL = "http://localhost" + c.Addr
	}
	if c.Auth.LoginURL == "" {
		c.Auth.LoginURL = "/auth"
	}

	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = 2 * time.Minute
	}
	if c.Storage.MaxUploadSize <= 0 {
		c.Storage.MaxUploadSize = 10 << 20
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "", "local":
		c.Storage.Backend = "local"
		if c.Storage.LocalDir == "" {
			c.Storage.LocalDir = "attachments"
		}
		if c.Storage.PublicBaseURL == "" {
			c.Storage.PublicBaseURL = strings.TrimRight(c.Auth.PublicURL, "/") + "/attachments"
		}
	case "gcs":
		c.Storage.Backend = "gcs"
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	if c.Logs.RecentLimit <= 0 {
		c.Logs.RecentLimit = 5
	}

	if c.Google.Enabled() && c.Google.RedirectURL == "" {
		c.Google.RedirectURL = strings.TrimRight(c.Auth.PublicURL, "/") + "/v1/auth/google/callback"
	}

	return nil
}

// IsDevelopment reports whether CPD_ENV selects the development environment.
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv("CPD_ENV"), "development")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
