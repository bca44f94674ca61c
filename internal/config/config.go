package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTP      HTTP
	Mongo     Mongo
	Postgres  Postgres
	Telegram  Telegram
	Storage   string `env:"STORAGE" envDefault:"mongo"`
	Owner     string `env:"RECORD_OWNER" envDefault:"default"` // there is no auth yet, every record belongs to this owner
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:3000"`
	AssetsDir       string        `env:"ASSETS_DIR" envDefault:"assets"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type Mongo struct {
	User           string        `env:"DB_USER"`
	Secret         string        `env:"DB_SECRET"`
	Scheme         string        `env:"MONGO_SCHEME" envDefault:"mongodb+srv"`
	Host           string        `env:"MONGO_HOST" envDefault:"testcluster.mkc0xla.mongodb.net"`
	Options        string        `env:"MONGO_OPTIONS" envDefault:"retryWrites=true&w=majority"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"moneytag"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
}

type Postgres struct {
	User     string `env:"DB_USER"`
	Secret   string `env:"DB_SECRET"`
	Endpoint string `env:"POSTGRES_ENDPOINT" envDefault:"localhost:5432/postgres"`
}

type Telegram struct {
	Token   string `env:"TG_TOKEN"`
	Timeout int    `env:"TIMEOUT" envDefault:"60"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %v", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config couldn't parse environment: %v", err)
	}
	switch cfg.Storage {
	case StorageMongo, StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("config: unknown storage %q", cfg.Storage)
	}
	return &cfg, nil
}
