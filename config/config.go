package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	Log         LogConfig
	MercadoPago MercadoPagoConfig
}

type AppConfig struct {
	ServiceName string
	Env         string
}

func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

type ServerConfig struct {
	Host string
	Port string
}

type LogConfig struct {
	Level string
}

type MercadoPagoConfig struct {
	AccessToken       string
	APIBase           string
	DefaultCurrency   string
	SellerID          string
	WebhookSecret     string
	WebhookStorePath  string
	BackURL           string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	DefaultPayerEmail string
	HTTPTimeout       time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessToken := os.Getenv("MERCADO_PAGO_ACCESS_TOKEN")
	if accessToken == "" {
		return nil, errors.New("MERCADO_PAGO_ACCESS_TOKEN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "billing-service"),
			Env:         getEnv("APP_ENV", "development"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "5000"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken:       accessToken,
			APIBase:           getEnv("MERCADO_PAGO_API_BASE", "https://api.mercadopago.com"),
			DefaultCurrency:   getEnv("MERCADO_PAGO_DEFAULT_CURRENCY", "MXN"),
			SellerID:          getEnv("MERCADO_PAGO_SELLER_ID", ""),
			WebhookSecret:     getEnv("MERCADO_PAGO_WEBHOOK_SECRET", ""),
			WebhookStorePath:  getEnv("MERCADO_PAGO_WEBHOOK_STORE", filepath.Join("data", "mercadopago-webhooks.jsonl")),
			BackURL:           getEnv("MERCADO_PAGO_BACK_URL", ""),
			SuccessURL:        getEnv("MERCADO_PAGO_SUCCESS_URL", ""),
			FailureURL:        getEnv("MERCADO_PAGO_FAILURE_URL", ""),
			PendingURL:        getEnv("MERCADO_PAGO_PENDING_URL", ""),
			DefaultPayerEmail: getEnv("MERCADO_PAGO_DEFAULT_PAYER_EMAIL", ""),
			HTTPTimeout:       getSecondsEnv("MERCADO_PAGO_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
