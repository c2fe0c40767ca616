// Package config resolves CLI settings from the environment, an optional
// .env file, and named profiles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL             = "http://localhost:5000/api"
	DefaultContactsPageSize   = 10
	DefaultActivitiesPageSize = 20
	DefaultSearchDebounce     = 500 * time.Millisecond
)

type Config struct {
	APIURL  string // CRM_API_URL (default http://localhost:5000/api)
	NATSURL string // CRM_NATS_URL (optional, empty = poll instead of live events)

	ContactsPageSize   int           // CRM_CONTACTS_PAGE_SIZE (default 10)
	ActivitiesPageSize int           // CRM_ACTIVITIES_PAGE_SIZE (default 20)
	SearchDebounce     time.Duration // CRM_SEARCH_DEBOUNCE (default 500ms)
	RateLimit          float64       // CRM_RATE_LIMIT requests/second (0 = unlimited)

	// Export settings
	ExportInterval   time.Duration // CRM_EXPORT_INTERVAL (default 0 = export once)
	ExportS3Bucket   string        // CRM_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Key      string        // CRM_EXPORT_S3_KEY (default "crm/contacts.csv")
	ExportS3Region   string        // CRM_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Endpoint string        // CRM_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)

	LogLevel slog.Level // CRM_LOG_LEVEL (default warn)
	Profile  string     // CRM_PROFILE (default: the active profile)
	StateDir string     // CRM_STATE_DIR (default ~/.local/state/crm)
}

// Load reads .env from the working directory (if present), then resolves
// settings with precedence environment > profile > defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	c := &Config{
		ExportS3Bucket:   os.Getenv("CRM_EXPORT_S3_BUCKET"),
		ExportS3Key:      envOrDefault("CRM_EXPORT_S3_KEY", "crm/contacts.csv"),
		ExportS3Region:   envOrDefault("CRM_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Endpoint: os.Getenv("CRM_EXPORT_S3_ENDPOINT"),
		Profile:          os.Getenv("CRM_PROFILE"),
	}

	var err error
	if c.StateDir, err = stateDir(); err != nil {
		return nil, err
	}
	if c.ContactsPageSize, err = envInt("CRM_CONTACTS_PAGE_SIZE", DefaultContactsPageSize); err != nil {
		return nil, err
	}
	if c.ActivitiesPageSize, err = envInt("CRM_ACTIVITIES_PAGE_SIZE", DefaultActivitiesPageSize); err != nil {
		return nil, err
	}
	if c.SearchDebounce, err = envDuration("CRM_SEARCH_DEBOUNCE", DefaultSearchDebounce); err != nil {
		return nil, err
	}
	if c.ExportInterval, err = envDuration("CRM_EXPORT_INTERVAL", 0); err != nil {
		return nil, err
	}
	if v := os.Getenv("CRM_RATE_LIMIT"); v != "" {
		c.RateLimit, err = strconv.ParseFloat(v, 64)
		if err != nil || c.RateLimit < 0 {
			return nil, fmt.Errorf("CRM_RATE_LIMIT: invalid value %q", v)
		}
	}
	if c.LogLevel, err = ParseLogLevel(envOrDefault("CRM_LOG_LEVEL", "warn")); err != nil {
		return nil, fmt.Errorf("CRM_LOG_LEVEL: %w", err)
	}

	if err := c.applyProfile(); err != nil {
		return nil, err
	}
	c.APIURL = envOrDefault("CRM_API_URL", c.APIURL)
	c.NATSURL = envOrDefault("CRM_NATS_URL", c.NATSURL)
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	return c, nil
}

// applyProfile fills APIURL and NATSURL from the selected profile. A
// missing profiles file is not an error; naming an unknown profile is.
func (c *Config) applyProfile() error {
	profiles, err := LoadProfiles(c.ProfilesPath())
	if err != nil {
		return err
	}
	name := c.Profile
	if name == "" {
		name = profiles.Active
	}
	if name == "" {
		return nil
	}
	p, ok := profiles.Profiles[name]
	if !ok {
		if c.Profile != "" {
			return fmt.Errorf("CRM_PROFILE: unknown profile %q", name)
		}
		return nil
	}
	c.Profile = name
	c.APIURL = p.APIURL
	c.NATSURL = p.NATSURL
	return nil
}

// SessionPath is where the login session is stored.
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir, "session.toml")
}

// ProfilesPath is where named profiles are stored.
func (c *Config) ProfilesPath() string {
	return filepath.Join(c.StateDir, "profiles.toml")
}

// ParseLogLevel accepts debug, info, warn or error (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func stateDir() (string, error) {
	if v := os.Getenv("CRM_STATE_DIR"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "crm"), nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", key, v)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
