package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port              string
	DBConn            string
	LogLevel          string
	JWTSecret         string
	UploadDir         string
	ApprovalThreshold decimal.Decimal
	DecisionSource    string
	KafkaBrokers      string
	KeyRateURL        string
	ReminderSchedule  string
	ReminderAgeDays   int
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5432 user=baraka password=baraka dbname=baraka sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		DecisionSource:   getEnv("DECISION_SOURCE", "manual"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KeyRateURL:       getEnv("KEY_RATE_URL", ""),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),
		ReminderAgeDays:  2,
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@baraka.example"),
	}

	threshold, err := decimal.NewFromString(getEnv("APPROVAL_THRESHOLD", "10000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APPROVAL_THRESHOLD: %w", err)
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("APPROVAL_THRESHOLD must not be negative")
	}
	cfg.ApprovalThreshold = threshold

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
