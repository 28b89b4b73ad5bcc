package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListCategoryColumn string
	ListPhoneColumn    string
	PhoneColumnHints   []string
	PhoneColumnPattern string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	OutputDir      string
	RemovedFolder  string
	ScrubbedFolder string
	ZipOutput      bool

	DropDuplicates bool
	CapturePolicy  string
	NumericTextAll bool
	CSVEncodings   []string

	LogLevel  string
	LogFormat string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListCategoryColumn: getEnv("LIST_CATEGORY_COLUMN", "Log Type"),
		ListPhoneColumn:    getEnv("LIST_PHONE_COLUMN", "Phone"),
		PhoneColumnHints: getEnvList("PHONE_COLUMN_HINTS",
			[]string{"mobile", "phone", "number", "tel", "contact", "ph"}),
		PhoneColumnPattern: getEnv("PHONE_COLUMN_PATTERN", ""),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		OutputDir:      getEnv("OUTPUT_DIR", "./output"),
		RemovedFolder:  getEnv("REMOVED_FOLDER", "removed"),
		ScrubbedFolder: getEnv("SCRUBBED_FOLDER", "scrubbed"),
		ZipOutput:      getEnvBool("ZIP_OUTPUT", true),

		DropDuplicates: getEnvBool("DROP_DUPLICATES", true),
		CapturePolicy:  strings.ToLower(getEnv("CAPTURE_POLICY", "row")),
		NumericTextAll: getEnvBool("NUMERIC_TEXT_ALL", false),
		CSVEncodings: getEnvList("CSV_ENCODINGS",
			[]string{"utf-8", "utf-16", "windows-1252", "iso-8859-1"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scrubber"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scrubber123"),
		PostgresDB:       getEnv("POSTGRES_DB", "scrub_audit"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// Validate ensures the loaded values can drive a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListCategoryColumn) == "" {
		return errors.New("list category column must not be empty")
	}
	if strings.TrimSpace(c.ListPhoneColumn) == "" {
		return errors.New("list phone column must not be empty")
	}
	if len(c.PhoneColumnHints) == 0 {
		return errors.New("at least one phone column hint is required")
	}
	if c.MaxConcurrency <= 0 {
		return errors.New("max concurrency must be positive")
	}
	if c.RateLimitMs < 0 {
		return errors.New("rate limit cannot be negative")
	}
	if c.MaxRetries < 1 {
		return errors.New("max retries must be at least 1")
	}
	switch c.CapturePolicy {
	case "row", "column":
	default:
		return errors.New("capture policy must be \"row\" or \"column\"")
	}
	if len(c.CSVEncodings) == 0 {
		return errors.New("at least one CSV encoding is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
