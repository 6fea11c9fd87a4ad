package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	Galleries   GalleriesConfig   `yaml:"galleries"`
}

type HTTPConfig struct {
	Host    string        `yaml:"host" env:"HTTP_HOST"`
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-required:"true"`
	TokenTTL time.Duration `yaml:"token_ttl" env-default:"24h"`
}

type FileStorageConfig struct {
	Driver  string   `yaml:"driver" env:"FILE_STORAGE_DRIVER" env-default:"local"`
	BaseDir string   `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string   `yaml:"base_url"`
	MaxSize int64    `yaml:"max_size" env-default:"10485760"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" env:"S3_BUCKET_NAME"`
	Region   string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint string `yaml:"endpoint" env:"S3_ENDPOINT"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redispassword" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env-default:"0"`
}

type GalleriesConfig struct {
	PageSize           int `yaml:"page_size" env-default:"20"`
	MaxPageSize        int `yaml:"max_page_size" env-default:"100"`
	ResolveConcurrency int `yaml:"resolve_concurrency" env-default:"8"`
}

// Load читает YAML файл и переменные окружения
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.FileStorage.Driver {
	case DriverLocal:
	case DriverS3:
		if c.FileStorage.S3.Bucket == "" {
			return errors.New("file_storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown file storage driver %q", c.FileStorage.Driver)
	}

	return nil
}
