// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	ImageGen   ImageGenConfig   `json:"image_gen"`
	Storage    StorageConfig    `json:"storage"`
	Admin      AdminConfig      `json:"admin"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
	CompressionLevel  int           `json:"compression_level"`
}

type SecurityConfig struct {
	// TLS/HTTPS
	TLSEnabled  bool   `json:"tls_enabled"`
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	WriteRateLimit  int           `json:"write_rate_limit"`  // requests per window on mutating endpoints
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	// Content Security
	CSPPolicy           string `json:"csp_policy"`
	XFrameOptions       string `json:"x_frame_options"`
	XContentTypeOptions string `json:"x_content_type_options"`
	ReferrerPolicy      string `json:"referrer_policy"`
}

type LoggingConfig struct {
	Level    string `json:"level"`  // debug, info, warn, error
	Format   string `json:"format"` // json, text
	Output   string `json:"output"` // stdout, file, both
	FilePath string `json:"file_path"`
	MaxSize  int    `json:"max_size"` // MB
	MaxAge   int    `json:"max_age"`  // days
	Backups  int    `json:"backups"`
	Compress bool   `json:"compress"`

	// Access Logs
	EnableAccessLog bool `json:"enable_access_log"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled        bool          `json:"enabled"`
	RedisURL       string        `json:"redis_url"`
	RedisDB        int           `json:"redis_db"`
	RedisPrefix    string        `json:"redis_prefix"`
	LeaderboardTTL time.Duration `json:"leaderboard_ttl"`
}

// ImageGenConfig configures the upstream image generation API.
type ImageGenConfig struct {
	BaseURL         string        `json:"base_url"`
	APIKey          string        `json:"api_key"`
	Model           string        `json:"model"`
	Referer         string        `json:"referer"`
	Title           string        `json:"title"`
	Timeout         time.Duration `json:"timeout"`
	ReferenceImages []string      `json:"reference_images"`
}

// StorageConfig configures creation image storage.
type StorageConfig struct {
	Provider     string `json:"provider"` // bucket, disk
	BaseURL      string `json:"base_url"`
	Bucket       string `json:"bucket"`
	ServiceKey   string `json:"service_key"`
	PublicPrefix string `json:"public_prefix"`
	DiskPath     string `json:"disk_path"`
	DiskBaseURL  string `json:"disk_base_url"`

	// Inline data URIs larger than this are dropped in favor of a null image.
	InlineCeiling int `json:"inline_ceiling"`
}

type AdminConfig struct {
	Token string `json:"token"`
}

// SchedulerConfig configures the periodic image backfill job.
type SchedulerConfig struct {
	BackfillEnabled  bool          `json:"backfill_enabled"`
	BackfillInterval time.Duration `json:"backfill_interval"`
	BackfillBatch    int           `json:"backfill_batch"`
	BackfillDelay    time.Duration `json:"backfill_delay"`
}

type DeploymentConfig struct {
	Domain      string `json:"domain"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "juicebox"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
			CompressionLevel:  getEnvInt("SERVER_COMPRESSION_LEVEL", 6),
		},
		Security: SecurityConfig{
			TLSEnabled:          getEnvBool("TLS_ENABLED", false),
			TLSCertFile:         getEnvString("TLS_CERT_FILE", ""),
			TLSKeyFile:          getEnvString("TLS_KEY_FILE", ""),
			AllowedOrigins:      getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://juicebox-limited-builder.vercel.app"}),
			AllowedMethods:      getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:      getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}),
			AllowCredentials:    getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			CORSMaxAge:          getEnvInt("CORS_MAX_AGE", 86400),
			WriteRateLimit:      getEnvInt("WRITE_RATE_LIMIT", 30),
			GlobalRateLimit:     getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RateLimitWindow:     getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			CSPPolicy:           getEnvString("CSP_POLICY", "default-src 'self'"),
			XFrameOptions:       getEnvString("X_FRAME_OPTIONS", "DENY"),
			XContentTypeOptions: getEnvString("X_CONTENT_TYPE_OPTIONS", "nosniff"),
			ReferrerPolicy:      getEnvString("REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Format:          getEnvString("LOG_FORMAT", "json"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "/var/log/juicebox/app.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Backups:         getEnvInt("LOG_MAX_BACKUPS", 10),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:        getEnvBool("CACHE_ENABLED", true),
			RedisURL:       getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:        getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:    getEnvString("CACHE_REDIS_PREFIX", "juicebox:"),
			LeaderboardTTL: getEnvDuration("CACHE_LEADERBOARD_TTL", 30*time.Second),
		},
		ImageGen: ImageGenConfig{
			BaseURL:         getEnvString("IMAGEGEN_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:          getEnvString("IMAGEGEN_API_KEY", ""),
			Model:           getEnvString("IMAGEGEN_MODEL", "google/gemini-3-pro-image-preview"),
			Referer:         getEnvString("IMAGEGEN_REFERER", "https://juicebox-limited-builder.vercel.app"),
			Title:           getEnvString("IMAGEGEN_TITLE", "JuiceBox Limited Builder"),
			Timeout:         getEnvDuration("IMAGEGEN_TIMEOUT", 90*time.Second),
			ReferenceImages: getEnvStringSlice("IMAGEGEN_REFERENCE_IMAGES", []string{}),
		},
		Storage: StorageConfig{
			Provider:      getEnvString("STORAGE_PROVIDER", "bucket"),
			BaseURL:       getEnvString("STORAGE_BASE_URL", ""),
			Bucket:        getEnvString("STORAGE_BUCKET", "creation-images"),
			ServiceKey:    getEnvString("STORAGE_SERVICE_KEY", ""),
			PublicPrefix:  getEnvString("STORAGE_PUBLIC_PREFIX", ""),
			DiskPath:      getEnvString("STORAGE_DISK_PATH", "/var/lib/juicebox/images"),
			DiskBaseURL:   getEnvString("STORAGE_DISK_BASE_URL", "/images"),
			InlineCeiling: getEnvInt("STORAGE_INLINE_CEILING", 1024*1024),
		},
		Admin: AdminConfig{
			Token: getEnvString("ADMIN_TOKEN", ""),
		},
		Scheduler: SchedulerConfig{
			BackfillEnabled:  getEnvBool("SCHEDULER_BACKFILL_ENABLED", false),
			BackfillInterval: getEnvDuration("SCHEDULER_BACKFILL_INTERVAL", 15*time.Minute),
			BackfillBatch:    getEnvInt("SCHEDULER_BACKFILL_BATCH", 5),
			BackfillDelay:    getEnvDuration("SCHEDULER_BACKFILL_DELAY", 2*time.Second),
		},
		Deployment: DeploymentConfig{
			Domain:      getEnvString("DOMAIN", "juicebox-at.com"),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	// Check if .env file exists
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	// Open .env file
	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	// Read file line by line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value pairs
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errs []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errs = append(errs, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.BodyLimit <= 0 {
		errs = append(errs, "SERVER_BODY_LIMIT must be positive")
	}

	// Validate TLS configuration
	if cfg.Security.TLSEnabled {
		if cfg.Security.TLSCertFile == "" {
			errs = append(errs, "TLS_CERT_FILE is required when TLS is enabled")
		}
		if cfg.Security.TLSKeyFile == "" {
			errs = append(errs, "TLS_KEY_FILE is required when TLS is enabled")
		}
	}

	// Validate image generation configuration
	if cfg.ImageGen.BaseURL == "" {
		errs = append(errs, "IMAGEGEN_BASE_URL is required")
	}
	if cfg.ImageGen.Timeout <= 0 {
		errs = append(errs, "IMAGEGEN_TIMEOUT must be positive")
	}

	// Validate storage configuration
	switch cfg.Storage.Provider {
	case "bucket":
		if cfg.Storage.BaseURL == "" {
			errs = append(errs, "STORAGE_BASE_URL is required for the bucket provider")
		}
	case "disk":
		if cfg.Storage.DiskPath == "" {
			errs = append(errs, "STORAGE_DISK_PATH is required for the disk provider")
		}
	default:
		errs = append(errs, "STORAGE_PROVIDER must be one of: bucket, disk")
	}
	if cfg.Storage.InlineCeiling <= 0 {
		errs = append(errs, "STORAGE_INLINE_CEILING must be positive")
	}

	// Validate logging configuration
	switch cfg.Logging.Output {
	case "stdout", "file", "both":
	default:
		errs = append(errs, "LOG_OUTPUT must be one of: stdout, file, both")
	}
	if cfg.Logging.Output != "stdout" && cfg.Logging.FilePath == "" {
		errs = append(errs, "LOG_FILE_PATH is required when logging to file")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
