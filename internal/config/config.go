package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "INVOICEPIPE"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Storage StorageConfig
	S3      S3Config
	Upload  UploadConfig
	Parser  ParserConfig
	Extract ExtractConfig
	CORS    CORSConfig
	Log     LogConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM provider.
type ParserProviderConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	DefaultModel  string `mapstructure:"default_model"`
	FallbackModel string `mapstructure:"fallback_model"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	MaxInputChars int    `mapstructure:"max_input_chars"`
	BaseURL       string `mapstructure:"base_url"`
}

// Configured reports whether the block names a provider.
func (p *ParserProviderConfig) Configured() bool {
	return p != nil && p.Provider != ""
}

// ParserConfig holds structured extraction settings for the two providers.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// ProviderConfig returns the block whose provider matches name, or nil.
func (p *ParserConfig) ProviderConfig(name string) *ParserProviderConfig {
	switch name {
	case "":
		return nil
	case p.Primary.Provider:
		return &p.Primary
	case p.Secondary.Provider:
		return &p.Secondary
	}
	return nil
}

// Configured returns the provider blocks that name a provider, primary first.
func (p *ParserConfig) Configured() []ParserProviderConfig {
	var out []ParserProviderConfig
	if p.Primary.Configured() {
		out = append(out, p.Primary)
	}
	if p.Secondary.Configured() && p.Secondary.Provider != p.Primary.Provider {
		out = append(out, p.Secondary)
	}
	return out
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	RemoteURL         string `mapstructure:"remote_url"`
	RemoteTimeoutSecs int    `mapstructure:"remote_timeout_secs"`
	PreferSingleCall  bool   `mapstructure:"prefer_single_call"`
	FetchTimeoutSecs  int    `mapstructure:"fetch_timeout_secs"`
	MaxFetchMB        int64  `mapstructure:"max_fetch_mb"`
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
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	// MigrationsDir is the golang-migrate source directory used by cmd/migrate.
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string. An explicit URL wins.
func (d *DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var envBindings = map[string]string{
	"server.port":                      "SERVER_PORT",
	"server.read_timeout":              "SERVER_READ_TIMEOUT",
	"server.write_timeout":             "SERVER_WRITE_TIMEOUT",
	"server.environment":               "SERVER_ENVIRONMENT",
	"db.url":                           "DB_URL",
	"db.host":                          "DB_HOST",
	"db.port":                          "DB_PORT",
	"db.user":                          "DB_USER",
	"db.password":                      "DB_PASSWORD",
	"db.name":                          "DB_NAME",
	"db.sslmode":                       "DB_SSLMODE",
	"db.max_open":                      "DB_MAX_OPEN",
	"db.max_idle":                      "DB_MAX_IDLE",
	"db.migrations_dir":                "DB_MIGRATIONS_DIR",
	"storage.driver":                   "STORAGE_DRIVER",
	"storage.local_dir":                "STORAGE_LOCAL_DIR",
	"storage.public_base_url":          "STORAGE_PUBLIC_BASE_URL",
	"s3.region":                        "S3_REGION",
	"s3.bucket":                        "S3_BUCKET",
	"s3.endpoint":                      "S3_ENDPOINT",
	"s3.access_key":                    "S3_ACCESS_KEY",
	"s3.secret_key":                    "S3_SECRET_KEY",
	"s3.presign_expiry":                "S3_PRESIGN_EXPIRY",
	"upload.max_file_size_mb":          "UPLOAD_MAX_FILE_SIZE_MB",
	"extract.remote_url":               "EXTRACT_REMOTE_URL",
	"extract.remote_timeout_secs":      "EXTRACT_REMOTE_TIMEOUT_SECS",
	"extract.prefer_single_call":       "EXTRACT_PREFER_SINGLE_CALL",
	"extract.fetch_timeout_secs":       "EXTRACT_FETCH_TIMEOUT_SECS",
	"extract.max_fetch_mb":             "EXTRACT_MAX_FETCH_MB",
	"log.level":                        "LOG_LEVEL",
	"log.format":                       "LOG_FORMAT",
	"cors.allowed_origins":             "CORS_ALLOWED_ORIGINS",
	"parser.primary.provider":          "PARSER_PRIMARY_PROVIDER",
	"parser.primary.api_key":           "PARSER_PRIMARY_API_KEY",
	"parser.primary.default_model":     "PARSER_PRIMARY_DEFAULT_MODEL",
	"parser.primary.fallback_model":    "PARSER_PRIMARY_FALLBACK_MODEL",
	"parser.primary.max_attempts":      "PARSER_PRIMARY_MAX_ATTEMPTS",
	"parser.primary.timeout_secs":      "PARSER_PRIMARY_TIMEOUT_SECS",
	"parser.primary.max_input_chars":   "PARSER_PRIMARY_MAX_INPUT_CHARS",
	"parser.primary.base_url":          "PARSER_PRIMARY_BASE_URL",
	"parser.secondary.provider":        "PARSER_SECONDARY_PROVIDER",
	"parser.secondary.api_key":         "PARSER_SECONDARY_API_KEY",
	"parser.secondary.default_model":   "PARSER_SECONDARY_DEFAULT_MODEL",
	"parser.secondary.fallback_model":  "PARSER_SECONDARY_FALLBACK_MODEL",
	"parser.secondary.max_attempts":    "PARSER_SECONDARY_MAX_ATTEMPTS",
	"parser.secondary.timeout_secs":    "PARSER_SECONDARY_TIMEOUT_SECS",
	"parser.secondary.max_input_chars": "PARSER_SECONDARY_MAX_INPUT_CHARS",
	"parser.secondary.base_url":        "PARSER_SECONDARY_BASE_URL",
}

// Load reads configuration from environment variables with the INVOICEPIPE_ prefix.
// A .env file in the working directory is applied first when present; variables
// already set in the environment are not overridden by it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoicepipe")
	v.SetDefault("db.password", "invoicepipe_secret")
	v.SetDefault("db.name", "invoicepipe_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.migrations_dir", "db/migrations")

	// Storage defaults
	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoicepipe-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	v.SetDefault("upload.max_file_size_mb", 25)

	// Text extraction defaults
	v.SetDefault("extract.remote_url", "")
	v.SetDefault("extract.remote_timeout_secs", 45)
	v.SetDefault("extract.prefer_single_call", false)
	v.SetDefault("extract.fetch_timeout_secs", 30)
	v.SetDefault("extract.max_fetch_mb", 25)

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parser defaults: Gemini primary, Groq secondary
	v.SetDefault("parser.primary.provider", "gemini")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "gemini-2.0-flash")
	v.SetDefault("parser.primary.fallback_model", "gemini-1.5-flash")
	v.SetDefault("parser.primary.max_attempts", 3)
	v.SetDefault("parser.primary.timeout_secs", 60)
	v.SetDefault("parser.primary.max_input_chars", 12000)
	v.SetDefault("parser.primary.base_url", "")
	v.SetDefault("parser.secondary.provider", "groq")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "llama-3.3-70b-versatile")
	v.SetDefault("parser.secondary.fallback_model", "llama-3.1-8b-instant")
	v.SetDefault("parser.secondary.max_attempts", 3)
	v.SetDefault("parser.secondary.timeout_secs", 60)
	v.SetDefault("parser.secondary.max_input_chars", 10000)
	v.SetDefault("parser.secondary.base_url", "")

	// Bind environment variables explicitly for nested keys
	for key, env := range envBindings {
		_ = v.BindEnv(key, envPrefix+"_"+env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it unless the prefixed variable is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		URL:           v.GetString("db.url"),
		Host:          v.GetString("db.host"),
		Port:          v.GetInt("db.port"),
		User:          v.GetString("db.user"),
		Password:      v.GetString("db.password"),
		Name:          v.GetString("db.name"),
		SSLMode:       v.GetString("db.sslmode"),
		MaxOpen:       v.GetInt("db.max_open"),
		MaxIdle:       v.GetInt("db.max_idle"),
		MigrationsDir: v.GetString("db.migrations_dir"),
	}
	cfg.Storage = StorageConfig{
		Driver:        strings.ToLower(v.GetString("storage.driver")),
		LocalDir:      v.GetString("storage.local_dir"),
		PublicBaseURL: strings.TrimRight(v.GetString("storage.public_base_url"), "/"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Extract = ExtractConfig{
		RemoteURL:         strings.TrimRight(v.GetString("extract.remote_url"), "/"),
		RemoteTimeoutSecs: v.GetInt("extract.remote_timeout_secs"),
		PreferSingleCall:  v.GetBool("extract.prefer_single_call"),
		FetchTimeoutSecs:  v.GetInt("extract.fetch_timeout_secs"),
		MaxFetchMB:        v.GetInt64("extract.max_fetch_mb"),
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
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Parser = ParserConfig{
		Primary:   providerConfig(v, "parser.primary"),
		Secondary: providerConfig(v, "parser.secondary"),
	}

	switch cfg.Storage.Driver {
	case "s3", "local":
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ParserProviderConfig {
	return ParserProviderConfig{
		Provider:      strings.ToLower(v.GetString(prefix + ".provider")),
		APIKey:        v.GetString(prefix + ".api_key"),
		DefaultModel:  v.GetString(prefix + ".default_model"),
		FallbackModel: v.GetString(prefix + ".fallback_model"),
		MaxAttempts:   v.GetInt(prefix + ".max_attempts"),
		TimeoutSecs:   v.GetInt(prefix + ".timeout_secs"),
		MaxInputChars: v.GetInt(prefix + ".max_input_chars"),
		BaseURL:       v.GetString(prefix + ".base_url"),
	}
}
