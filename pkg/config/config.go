package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Catalog       CatalogConfig
	Storage       StorageConfig
	Policy        PolicyConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
}

type CatalogConfig struct {
	// DataDir holds the curriculum catalog JSON files (B-IE-*.json,
	// gen_ed_courses.json) and curriculum templates.
	DataDir string
}

type StorageConfig struct {
	// UploadDir is where uploaded transcript PDFs and generated reports land.
	UploadDir string
	// RetentionDays bounds how long stored uploads and reports survive
	// before the cleanup job removes them.
	RetentionDays int
}

// PolicyConfig carries institution-specific registration rules. Credit
// ceilings and the grade vocabulary are policy, not algorithm, so they are
// configuration rather than literals in the validator.
type PolicyConfig struct {
	MaxCreditsRegular int      // First/Second semester credit ceiling
	MaxCreditsSummer  int      // Summer session credit ceiling
	MaxCreditsCourse  int      // per-course sanity ceiling for the extractor
	CourseCodeLength  int      // fixed width of course codes in the catalog
	PassingGrades     []string // grades that count toward the passed-course history
	InProgressGrades  []string // grades excluded from semester credit totals
	AllowedGrades     []string // full grade vocabulary accepted by the extractor
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_BYTES", 16<<20)),
		},
		Catalog: CatalogConfig{
			DataDir: getEnv("CATALOG_DATA_DIR", "course_data"),
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("STORAGE_UPLOAD_DIR", "uploads"),
			RetentionDays: getEnvAsInt("STORAGE_RETENTION_DAYS", 7),
		},
		Policy: PolicyConfig{
			MaxCreditsRegular: getEnvAsInt("POLICY_MAX_CREDITS_REGULAR", 22),
			MaxCreditsSummer:  getEnvAsInt("POLICY_MAX_CREDITS_SUMMER", 9),
			MaxCreditsCourse:  getEnvAsInt("POLICY_MAX_CREDITS_COURSE", 9),
			CourseCodeLength:  getEnvAsInt("POLICY_COURSE_CODE_LENGTH", 8),
			PassingGrades:     getEnvAsSlice("POLICY_PASSING_GRADES", []string{"A", "B+", "B", "C+", "C", "D+", "D", "P"}),
			InProgressGrades:  getEnvAsSlice("POLICY_IN_PROGRESS_GRADES", []string{"W", "N", ""}),
			AllowedGrades:     getEnvAsSlice("POLICY_ALLOWED_GRADES", []string{"A", "B+", "B", "C+", "C", "D+", "D", "F", "W", "N", "P", "I", "S", "U"}),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Policy.MaxCreditsSummer > cfg.Policy.MaxCreditsRegular {
		return nil, fmt.Errorf("summer credit ceiling %d exceeds regular ceiling %d",
			cfg.Policy.MaxCreditsSummer, cfg.Policy.MaxCreditsRegular)
	}

	return cfg, nil
}

// Addr returns the host:port the API listens on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
