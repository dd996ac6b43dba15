package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

var (
	// ErrMissingEnv is returned when a required variable is unset or empty.
	ErrMissingEnv = errors.New("missing required environment variable")
	// ErrInvalidEnv is returned when a variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)

// Config aggregates runtime configuration for the thumbnail functions.
type Config struct {
	Thumbnail ThumbnailConfig
	AWS       AWSConfig
	Storage   StorageConfig
	MinIO     MinIOConfig
	Server    ServerConfig
	Metrics   MetricsConfig
}

// ThumbnailConfig parameterizes thumbnail generation.
type ThumbnailConfig struct {
	Size int
}

// AWSConfig carries region, endpoint overrides and the metadata table.
type AWSConfig struct {
	Region           string
	Table            string
	S3Endpoint       string
	S3ForcePathStyle bool
	DynamoDBEndpoint string
	MaxRetries       int
}

// StorageConfig selects the object-store backend.
type StorageConfig struct {
	Backend string
}

// MinIOConfig carries MinIO connection details for local development.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// ServerConfig parameterizes the local HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration from environment variables. THUMBNAIL_SIZE,
// DYNAMODB_TABLE and REGION_NAME are required; everything else has a default.
func Load() (Config, error) {
	var errs []error

	size, err := requireInt("THUMBNAIL_SIZE")
	if err != nil {
		errs = append(errs, err)
	} else if size <= 0 {
		errs = append(errs, fmt.Errorf("%w: THUMBNAIL_SIZE must be positive, got %d", ErrInvalidEnv, size))
	}

	table, err := requireString("DYNAMODB_TABLE")
	if err != nil {
		errs = append(errs, err)
	}

	region, err := requireString("REGION_NAME")
	if err != nil {
		errs = append(errs, err)
	}

	backend := strings.ToLower(getString("STORAGE_BACKEND", BackendS3))
	if backend != BackendS3 && backend != BackendMinIO {
		errs = append(errs, fmt.Errorf("%w: STORAGE_BACKEND %q", ErrInvalidEnv, backend))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return Config{
		Thumbnail: ThumbnailConfig{Size: size},
		AWS: AWSConfig{
			Region:           region,
			Table:            table,
			S3Endpoint:       getString("S3_ENDPOINT", ""),
			S3ForcePathStyle: getBool("S3_FORCE_PATH_STYLE", false),
			DynamoDBEndpoint: getString("DYNAMODB_ENDPOINT", ""),
			MaxRetries:       getInt("AWS_MAX_RETRIES", -1),
		},
		Storage: StorageConfig{Backend: backend},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "minioadmin"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "minioadmin"),
			Bucket:          getString("MINIO_BUCKET", "uploads"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
		},
		Server: ServerConfig{
			Host:         getString("LOCALAPI_HOST", "127.0.0.1"),
			Port:         getInt("LOCALAPI_PORT", 8080),
			ReadTimeout:  getDuration("LOCALAPI_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("LOCALAPI_WRITE_TIMEOUT", 30*time.Second),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("METRICS_PATH", "/metrics"),
		},
	}, nil
}

func requireString(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, key)
	}
	return val, nil
}

func requireInt(key string) (int, error) {
	val, err := requireString(key)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, key, val)
	}
	return parsed, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
