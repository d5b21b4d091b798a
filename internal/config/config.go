package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	// Core backend the orchestrator delegates persistence to.
	BackendBaseURL string

	// VNPay gateway settings.
	VNPayTmnCode        string
	VNPayHashSecret     string
	VNPayPayURL         string
	VNPayReturnURL      string
	VNPayDeepLinkScheme string

	// Session store. Driver is one of "redis", "postgres", "memory".
	SessionDriver string
	RedisAddr     string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string

	// Notification events.
	KafkaBrokers []string
	NotifyTopic  string

	JWTSecret string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "development"),

		BackendBaseURL: os.Getenv("BACKEND_BASE_URL"),

		VNPayTmnCode:        os.Getenv("VNPAY_TMN_CODE"),
		VNPayHashSecret:     os.Getenv("VNPAY_HASH_SECRET"),
		VNPayPayURL:         getenv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		VNPayReturnURL:      os.Getenv("VNPAY_RETURN_URL"),
		VNPayDeepLinkScheme: getenv("VNPAY_DEEPLINK_SCHEME", "cakeshop"),

		SessionDriver: getenv("SESSION_DRIVER", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        getenv("DB_PORT", "5432"),

		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
		NotifyTopic:  getenv("NOTIFY_TOPIC", "order.notifications"),

		JWTSecret: os.Getenv("SECRET_KEY"),
	}

	if cfg.BackendBaseURL == "" {
		log.Fatal("BACKEND_BASE_URL not set; orchestrator cannot reach the core backend")
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
