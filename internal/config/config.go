package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Timeline import
	TimelineURL   string `json:"timeline_url" validate:"omitempty,url"`
	MaxPosts      int    `json:"max_posts" validate:"min=1"`
	NotBeforeDays int    `json:"not_before_days" validate:"min=0"`
	FilterGarbage bool   `json:"filter_garbage"`
	BlocklistPath string `json:"blocklist_path" validate:"required"`

	// Schedule import
	ScheduleURL   string `json:"schedule_url" validate:"omitempty,url"`
	ScheduleGroup string `json:"schedule_group"`

	// Asset cache
	CacheDir            string        `json:"cache_dir" validate:"required"`
	TimelinePath        string        `json:"timeline_path" validate:"required"`
	SweepMaxAge         time.Duration `json:"sweep_max_age"`
	RefreshInterval     time.Duration `json:"refresh_interval"`
	MaintenanceInterval time.Duration `json:"maintenance_interval"`

	// Optional S3-compatible digest publishing
	S3Endpoint  string `json:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
	S3Bucket    string `json:"s3_bucket"`
	S3Key       string `json:"s3_key"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Timeline import
		TimelineURL:   getEnv("TIMELINE_URL", ""),
		MaxPosts:      getEnvAsInt("MAX_POSTS", 25),
		NotBeforeDays: getEnvAsInt("NOT_BEFORE_DAYS", 7),
		FilterGarbage: getEnvAsBool("FILTER_GARBAGE", true),
		BlocklistPath: getEnv("BLOCKLIST_PATH", "./blocked.txt"),

		// Schedule import
		ScheduleURL:   getEnv("SCHEDULE_URL", ""),
		ScheduleGroup: getEnv("SCHEDULE_GROUP", "default"),

		// Asset cache
		CacheDir:            getEnv("CACHE_DIR", "./data/cache"),
		TimelinePath:        getEnv("TIMELINE_PATH", "./data/timeline.json"),
		SweepMaxAge:         getEnvAsDuration("SWEEP_MAX_AGE", 12*time.Hour),
		RefreshInterval:     getEnvAsDuration("REFRESH_INTERVAL", 5*time.Minute),
		MaintenanceInterval: getEnvAsDuration("MAINTENANCE_INTERVAL", time.Hour),

		// Optional S3-compatible digest publishing
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Key:       getEnv("S3_KEY", "timeline.json"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
