// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Redis    RedisConfig   `yaml:"redis"`
	Tokens   TokensConfig  `yaml:"tokens"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// RedisConfig — настройки подключения к Redis.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-required:"true"`
}

// TokensConfig содержит параметры жизненного цикла токенов.
// Все три TTL считаются в секундах на стороне хранилища, поэтому значения
// должны быть кратны секунде.
type TokensConfig struct {
	// TokenTTL — полное время жизни свежего токена (lease-таймер и таймер простоя).
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"300s"`
	// ActiveTTL — длительность активной аренды (таймер назначения).
	ActiveTTL time.Duration `yaml:"active_ttl" env:"ACTIVE_TTL" env-default:"60s"`
	// KeepAliveIncrement — на сколько каждая keep-alive команда продлевает таймеры.
	KeepAliveIncrement time.Duration `yaml:"keep_alive_increment" env:"KEEP_ALIVE_INCREMENT" env-default:"300s"`
	// GenerateMaxAttempts — предел повторов генерации при коллизии идентификатора.
	GenerateMaxAttempts int `yaml:"generate_max_attempts" env:"GENERATE_MAX_ATTEMPTS" env-default:"10"`
}

// MonitorConfig — параметры фонового монитора истечений.
type MonitorConfig struct {
	// RetryBackoff — фиксированная пауза перед переподпиской после потери
	// потока событий.
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"MONITOR_RETRY_BACKOFF" env-default:"5s"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
