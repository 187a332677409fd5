package config

import (
	"fmt"
	"os"
	"strconv"

	"startup_market/internal/utils"
)

// AppConfig holds the server settings read from the environment
type AppConfig struct {
	ServerPort         string
	JWTSecret          string
	JWTExpirationHours int64
	DemoMode           bool
	PageSize           int
	RedisAddr          string
	KafkaBroker        string
	KafkaTopic         string
	LoginRatePerMinute int
	InitialAdminEmail  string
}

// LoadAppConfig loads server configuration from environment variables
func LoadAppConfig() (*AppConfig, error) {
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}

	jwtExpHours, err := strconv.ParseInt(utils.GetEnvAsString("JWT_EXPIRATION_HOURS", "24"), 10, 64)
	if err != nil || jwtExpHours <= 0 {
		jwtExpHours = 24
	}

	return &AppConfig{
		ServerPort:         utils.GetEnvAsString("SERVER_PORT", "8080"),
		JWTSecret:          jwtSecret,
		JWTExpirationHours: jwtExpHours,
		DemoMode:           utils.GetEnvAsBool("DEMO_MODE", false),
		PageSize:           utils.GetEnvAsInt("PAGE_SIZE", 12),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBroker:        os.Getenv("KAFKA_BROKER"),
		KafkaTopic:         utils.GetEnvAsString("KAFKA_TOPIC", "marketplace.events"),
		LoginRatePerMinute: utils.GetEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
		InitialAdminEmail:  os.Getenv("INITIAL_ADMIN_EMAIL"),
	}, nil
}
