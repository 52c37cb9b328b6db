package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Parser ParserConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the artifact archive bucket.
// An empty bucket disables archival.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserConfig holds EFD parsing settings.
type ParserConfig struct {
	LayoutVersion string `mapstructure:"layout_version"`
	MaxFiles      int    `mapstructure:"max_files"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	Concurrency   int    `mapstructure:"concurrency"`
	CacheSize     int    `mapstructure:"cache_size"`
}

// Load reads configuration from environment variables with the CREDSPED_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CREDSPED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "credsped")
	v.SetDefault("db.password", "credsped_secret")
	v.SetDefault("db.name", "credsped_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults (archival disabled unless a bucket is set)
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults
	v.SetDefault("parser.layout_version", "")
	v.SetDefault("parser.max_files", 12)
	v.SetDefault("parser.max_file_size_mb", 50)
	v.SetDefault("parser.concurrency", 4)
	v.SetDefault("parser.cache_size", 64)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "CREDSPED_SERVER_PORT",
		"server.read_timeout":     "CREDSPED_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "CREDSPED_SERVER_WRITE_TIMEOUT",
		"server.environment":      "CREDSPED_SERVER_ENVIRONMENT",
		"db.host":                 "CREDSPED_DB_HOST",
		"db.port":                 "CREDSPED_DB_PORT",
		"db.user":                 "CREDSPED_DB_USER",
		"db.password":             "CREDSPED_DB_PASSWORD",
		"db.name":                 "CREDSPED_DB_NAME",
		"db.sslmode":              "CREDSPED_DB_SSLMODE",
		"db.max_open":             "CREDSPED_DB_MAX_OPEN",
		"db.max_idle":             "CREDSPED_DB_MAX_IDLE",
		"s3.region":               "CREDSPED_S3_REGION",
		"s3.bucket":               "CREDSPED_S3_BUCKET",
		"s3.endpoint":             "CREDSPED_S3_ENDPOINT",
		"s3.access_key":           "CREDSPED_S3_ACCESS_KEY",
		"s3.secret_key":           "CREDSPED_S3_SECRET_KEY",
		"log.level":               "CREDSPED_LOG_LEVEL",
		"log.format":              "CREDSPED_LOG_FORMAT",
		"cors.allowed_origins":    "CREDSPED_CORS_ALLOWED_ORIGINS",
		"parser.layout_version":   "CREDSPED_PARSER_LAYOUT_VERSION",
		"parser.max_files":        "CREDSPED_PARSER_MAX_FILES",
		"parser.max_file_size_mb": "CREDSPED_PARSER_MAX_FILE_SIZE_MB",
		"parser.concurrency":      "CREDSPED_PARSER_CONCURRENCY",
		"parser.cache_size":       "CREDSPED_PARSER_CACHE_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CREDSPED_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CREDSPED_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		LayoutVersion: v.GetString("parser.layout_version"),
		MaxFiles:      v.GetInt("parser.max_files"),
		MaxFileSizeMB: v.GetInt64("parser.max_file_size_mb"),
		Concurrency:   v.GetInt("parser.concurrency"),
		CacheSize:     v.GetInt("parser.cache_size"),
	}

	return cfg, nil
}
