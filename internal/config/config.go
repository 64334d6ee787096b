package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string        `mapstructure:"environment"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	Ingest      IngestConfig  `mapstructure:"ingest"`
	Mongo       MongoConfig   `mapstructure:"mongo"`
	MinIO       MinIOConfig   `mapstructure:"minio"`
	Redis       RedisConfig   `mapstructure:"redis"`
	NATS        NATSConfig    `mapstructure:"nats"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Tracing     TracingConfig `mapstructure:"tracing"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
}

type HTTPConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type IngestConfig struct {
	// SharedSecret authenticates the aggregator's requests.
	SharedSecret string `mapstructure:"shared_secret"`
	// Concurrency bounds the batch worker pool.
	Concurrency int `mapstructure:"concurrency"`
	// FetchTimeout bounds each remote image fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	// MaxImageBytes caps the size of a single downloaded image.
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
	// SyncRetries is how many times the search sync consumer retries a
	// failed projection before giving up.
	SyncRetries int `mapstructure:"sync_retries"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type SMTPConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	AlertsTo []string `mapstructure:"alerts_to"`
}

// Load reads configuration from an optional yaml file plus environment
// variables (prefix INGEST), preloading .env when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on environment variables")
	}

	viper.SetDefault("environment", "development")

	viper.SetDefault("http.port", "8080")
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "60s")

	viper.SetDefault("ingest.concurrency", 4)
	viper.SetDefault("ingest.fetch_timeout", "15s")
	viper.SetDefault("ingest.max_image_bytes", 10*1024*1024)
	viper.SetDefault("ingest.sync_retries", 3)

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "marketplace_ingestion")
	viper.SetDefault("mongo.connect_timeout", "10s")

	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.bucket", "listing-images")
	viper.SetDefault("minio.use_ssl", false)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.connect_timeout", "5s")

	viper.SetDefault("metrics.port", "9090")

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.endpoint", "localhost:4317")

	viper.SetDefault("smtp.port", 587)

	if _, err := os.Stat(path); path != "" && !os.IsNotExist(err) {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("INGEST")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found; using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
