// Package config предоставляет структуры и функцию для парсинга и загрузки конфига дашборда
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	API             `yaml:"api"`
	PostalCode      `yaml:"postal_code"`
	RedisConnection `yaml:"redis_connection"`
	Session         `yaml:"session"`
	HTTPServer      `yaml:"http_server"`
	RateLimit       `yaml:"rate_limit"`
}

// API настройки клиента удалённого API адресов и пользователей
type API struct {
	BaseURL    string        `yaml:"base_url" env-required:"true"`
	APITimeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// PostalCode настройки сервиса поиска адреса по CEP
type PostalCode struct {
	PostalCodeURL     string        `yaml:"base_url" env-default:"https://viacep.com.br"`
	PostalCodeTimeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress     string        `yaml:"addressredis" env-default:"localhost:6379"`
	RedisPassword    string        `yaml:"password"`
	RedisUser        string        `yaml:"user"`
	RedisDB          int           `yaml:"db"`
	RedisMaxRetries  int           `yaml:"max_retries"`
	RedisDialTimeout time.Duration `yaml:"dial_timeout"`
	RedisTimeout     time.Duration `yaml:"timeoutredis"`
}

// Session настройки хранения токена и профиля
type Session struct {
	KeyPrefix string        `yaml:"key_prefix" env-default:"dashboard:"`
	TokenTTL  time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RateLimit ограничение частоты запросов к защищённым маршрутам
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, подставляя значения по умолчанию
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"PostalCode:\n"+
			"  BaseURL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"Session:\n"+
			"  KeyPrefix: %s\n"+
			"  TokenTTL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n",
		c.Env,
		c.BaseURL,
		c.APITimeout,
		c.PostalCodeURL,
		c.RedisAddress,
		c.RedisUser,
		c.RedisDB,
		c.KeyPrefix,
		c.TokenTTL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
	)
}
