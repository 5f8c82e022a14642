package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every environment-driven setting, collected once at process
// start and passed explicitly to each component.
type Config struct {
	// OpenPulse API.
	Endpoint  string
	APIKey    string
	SecretKey string
	ProjectID string

	// CI metadata forwarded with the upload when present.
	OrganizationID string
	JobID          string
	RepoName       string
	BranchName     string

	// Behavior toggles.
	DebugLogging    bool
	FailOnMisconfig bool
	FailOnVuln      bool
	FailOnSecret    bool

	// Tool binaries and working paths.
	TrivyPath    string
	GitleaksPath string
	CdxgenPath   string
	ReportsDir   string

	UploadTimeout  time.Duration
	UploadAttempts int

	// Optional sinks.
	DatabaseURL   string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool
	ArchiveBucket string
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads the environment into a Config and validates the settings the
// pipeline cannot run without.
func Load() (Config, error) {
	cfg := Config{
		Endpoint:  os.Getenv("PULSE_ENDPOINT"),
		APIKey:    os.Getenv("PULSE_API_KEY"),
		SecretKey: os.Getenv("PULSE_SECRET_KEY"),
		ProjectID: os.Getenv("PULSE_PROJECT_ID"),

		OrganizationID: os.Getenv("ORGANIZATION_ID"),
		JobID:          os.Getenv("JOB_ID"),
		RepoName:       os.Getenv("REPO_NAME"),
		BranchName:     os.Getenv("BRANCH_NAME"),

		DebugLogging:    getBool("DEBUG_LOGGING", true),
		FailOnMisconfig: getBool("FAIL_ON_MISCONFIG", true),
		FailOnVuln:      getBool("FAIL_ON_VULN", true),
		FailOnSecret:    getBool("FAIL_ON_SECRET", true),

		TrivyPath:    getString("TRIVY_PATH", "trivy"),
		GitleaksPath: getString("GITLEAKS_PATH", "gitleaks"),
		CdxgenPath:   getString("CDXGEN_PATH", "cdxgen"),
		ReportsDir:   getString("REPORTS_DIR", "pulse-reports"),

		UploadTimeout:  getDuration("UPLOAD_TIMEOUT", 60*time.Second),
		UploadAttempts: getInt("UPLOAD_ATTEMPTS", 1),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3UseSSL:      getBool("S3_USE_SSL", false),
		ArchiveBucket: os.Getenv("ARCHIVE_BUCKET"),
	}
	if cfg.Endpoint == "" {
		return Config{}, fmt.Errorf("PULSE_ENDPOINT is required")
	}
	if cfg.UploadAttempts < 1 {
		cfg.UploadAttempts = 1
	}
	return cfg, nil
}

// HistoryEnabled reports whether run history should be recorded to Postgres.
func (c Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// ArchiveEnabled reports whether raw reports should be copied to object storage.
func (c Config) ArchiveEnabled() bool {
	return c.S3Endpoint != "" && c.ArchiveBucket != ""
}
