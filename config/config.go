package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ZIPPYBOX_JWT_SECRET.
const EnvPrefix = "ZIPPYBOX"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server" json:"server"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Storage  StorageConfig  `mapstructure:"storage" json:"storage"`
	MinIO    MinIOConfig    `mapstructure:"minio" json:"minio"`
	JWT      JWTConfig      `mapstructure:"jwt" json:"jwt"`
	Upload   UploadConfig   `mapstructure:"upload" json:"upload"`
	Log      LogConfig      `mapstructure:"log" json:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host               string `mapstructure:"host" json:"host"`
	Port               int    `mapstructure:"port" json:"port"`
	MaxMultipartMemory int64  `mapstructure:"max_multipart_memory" json:"max_multipart_memory"`
	// Origins allowed by the CORS middleware. Empty allows all.
	AllowedOrigins []string `mapstructure:"allowed_origins" json:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" json:"driver"` // postgres or sqlite3
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`
	DBName   string `mapstructure:"dbname" json:"dbname"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode"`
	Path     string `mapstructure:"path" json:"path"` // sqlite file
}

// StorageConfig selects the blob store backend
type StorageConfig struct {
	Backend string `mapstructure:"backend" json:"backend"` // minio or filesystem
	Dir     string `mapstructure:"dir" json:"dir"`
	// PublicURL prefixes stored paths when the filesystem backend builds file URLs.
	PublicURL string `mapstructure:"public_url" json:"public_url"`
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint" json:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl" json:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name" json:"bucket_name"`
	Region          string `mapstructure:"region" json:"region"`
	// PublicURL is the base clients use to fetch objects, e.g. a CDN in front of the bucket.
	// Defaults to the endpoint plus bucket.
	PublicURL        string `mapstructure:"public_url" json:"public_url"`
	ThumbnailBaseURL string `mapstructure:"thumbnail_base_url" json:"thumbnail_base_url"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string `mapstructure:"secret" json:"secret"`
	Expiration string `mapstructure:"expiration" json:"expiration"` // Duration as string (e.g., "24h", "1h30m")
}

// UploadConfig holds ingestion limits
type UploadConfig struct {
	Namespace        string   `mapstructure:"namespace" json:"namespace"`
	MaxFileSize      int64    `mapstructure:"max_file_size" json:"max_file_size"`
	DeniedExtensions []string `mapstructure:"denied_extensions" json:"denied_extensions"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" json:"format"` // text or json
}

// DefaultMaxFileSize is the per-file upload ceiling (50 MiB).
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// DefaultDeniedExtensions lists executable-style extensions refused at upload.
var DefaultDeniedExtensions = []string{".exe", ".bat", ".cmd", ".com", ".pif", ".scr", ".vbs", ".js"}

// GetExpiration returns the parsed duration
func (j *JWTConfig) GetExpiration() time.Duration {
	if j.Expiration == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(j.Expiration)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_multipart_memory", 32<<20)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "zippybox")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "zippybox.db")

	v.SetDefault("storage.backend", "minio")
	v.SetDefault("storage.dir", "data/blobs")
	v.SetDefault("storage.public_url", "")

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket_name", "zippybox")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.public_url", "")
	v.SetDefault("minio.thumbnail_base_url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("upload.namespace", "zippybox")
	v.SetDefault("upload.max_file_size", DefaultMaxFileSize)
	v.SetDefault("upload.denied_extensions", DefaultDeniedExtensions)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load loads configuration from a Config.json file and ZIPPYBOX_* environment
// variables. An explicit path must exist; with an empty path the file is
// looked up next to the executable, then in the working directory, and may be
// absent when the environment supplies everything.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("Config")
		if exePath, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(exePath))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config file")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "minio", "filesystem":
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive")
	}
	if c.Upload.Namespace == "" {
		return fmt.Errorf("upload.namespace is required")
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite3" {
		return fmt.Sprintf("file:%s?cache=shared&_fk=1", c.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
