package config

import (
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultJWTSecret = "your-very-secret-key-for-listing-service"

// Config holds all configuration for the service.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`

	MongoURI         string `mapstructure:"MONGO_URI"`
	MongoDatabase    string `mapstructure:"MONGO_DATABASE"`
	MongoSearchIndex string `mapstructure:"MONGO_SEARCH_INDEX"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	RedisAddress    string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	GeocodeCacheTTL time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	JWTSecret        string `mapstructure:"JWT_SECRET"`
	GoogleMapsAPIKey string `mapstructure:"GOOGLE_MAPS_API_KEY"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPEmail    string `mapstructure:"SMTP_EMAIL"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from the environment. A .env file, if any, is loaded by main.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if err := cfg.validate(appLogger); err != nil {
		return nil, err
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("mongo_search_index", cfg.MongoSearchIndex),
		zap.String("minio_endpoint", cfg.MinIOEndpoint),
		zap.String("minio_bucket", cfg.MinIOBucket),
		zap.Bool("redis_enabled", cfg.RedisAddress != ""),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.Bool("smtp_enabled", cfg.SMTPHost != ""),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "rental-listing-service")
	v.SetDefault("HTTP_PORT", "8082")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "rental")
	v.SetDefault("MONGO_SEARCH_INDEX", "default")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "listing-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("GEOCODE_CACHE_TTL", "24h")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("GOOGLE_MAPS_API_KEY", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_EMAIL", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func (c *Config) validate(appLogger *logger.Logger) error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is not set")
	}
	if c.MongoDatabase == "" {
		return errors.New("MONGO_DATABASE is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if c.JWTSecret == defaultJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Set a strong secret in the environment.")
	}
	if c.GoogleMapsAPIKey == "" {
		appLogger.Warn("GOOGLE_MAPS_API_KEY is not set; geocoding requests will be rejected by the provider")
	}
	return nil
}
