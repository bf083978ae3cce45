package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // meet-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

// Transport — внешний SFU. Ключ и секрет только из окружения,
// в yaml их не кладём.
type Transport struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
	TokenTTL  string `yaml:"tokenTTL"` // duration, по умолчанию 10m
}

type Config struct {
	HTTP      HTTP      `yaml:"http"`
	Logging   Logging   `yaml:"logging"`
	Transport Transport `yaml:"transport"`
}

func LoadConfig() (*Config, error) {
	// .env подхватываем до чтения окружения; отсутствие файла не ошибка
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Transport.APIKey = os.Getenv("LIVEKIT_API_KEY")
	cfg.Transport.APISecret = os.Getenv("LIVEKIT_API_SECRET")
	if u := os.Getenv("LIVEKIT_URL"); u != "" {
		cfg.Transport.URL = u
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	// отсутствие подписи — ошибка старта, а не запроса
	if c.Transport.APIKey == "" {
		return errors.New("LIVEKIT_API_KEY is required")
	}
	if c.Transport.APISecret == "" {
		return errors.New("LIVEKIT_API_SECRET is required")
	}
	if c.Transport.URL == "" {
		return errors.New("transport.url (or LIVEKIT_URL) is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "meet-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

// TokenTTLOrDefault парсит TTL токена; мусор и нули падают в дефолт.
func (c *Config) TokenTTLOrDefault(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(c.Transport.TokenTTL); err == nil && d > 0 {
		return d
	}
	return def
}
