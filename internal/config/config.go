// Package config содержит логику чтения конфигурации витрины.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации витрины.
type Config struct {
	RunAddress            string `env:"RUN_ADDRESS"`
	DatabaseURI           string `env:"DATABASE_URI"`
	RedisAddress          string `env:"REDIS_ADDRESS"`
	PaymentGatewayAddress string `env:"PAYMENT_GATEWAY_ADDRESS"`
	KafkaBrokers          string `env:"KAFKA_BROKERS"`
	SessionSecret         string `env:"SESSION_SECRET"`
}

// Brokers возвращает список брокеров Kafka; пустой, если публикация событий не настроена.
func (c *Config) Brokers() []string {
	var res []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			res = append(res, b)
		}
	}
	return res
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddress, "c", "localhost:6379", "redis address for cart sessions")
	flag.StringVar(&cfg.PaymentGatewayAddress, "p", "", "payment gateway address")
	flag.StringVar(&cfg.KafkaBrokers, "k", "", "comma-separated kafka brokers for notifications")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret for signing session cookies")

	flag.Parse()

	override(&cfg.RunAddress, fromEnv.RunAddress)
	override(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	override(&cfg.RedisAddress, fromEnv.RedisAddress)
	override(&cfg.PaymentGatewayAddress, fromEnv.PaymentGatewayAddress)
	override(&cfg.KafkaBrokers, fromEnv.KafkaBrokers)
	override(&cfg.SessionSecret, fromEnv.SessionSecret)

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	return cfg, nil
}

func override(dst *string, envValue string) {
	if envValue != "" {
		*dst = envValue
	}
}
