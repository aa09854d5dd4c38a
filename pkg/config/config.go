package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency is the reference currency all limits and aggregated
	// spending are denominated in.
	BaseCurrency string
	// DefaultMonthlyLimit applies to a category until a limit is set for it.
	DefaultMonthlyLimit decimal.Decimal
	// BridgeRoutes maps a source currency to the bridge currency used to
	// derive its rate into the base currency (parsed from "KZT:RUB,..." form).
	BridgeRoutes map[string]string

	// Quote poller settings.
	TwelveDataAPIKey    string
	TwelveDataBaseURL   string
	ExchangePairs       []string
	RateRefreshInterval time.Duration

	// RateLimit is the API rate limit in ulule/limiter format, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("LIMIT_CURRENCY", "USD")
	viper.SetDefault("DEFAULT_MONTHLY_LIMIT", "1000.00")
	viper.SetDefault("BRIDGE_ROUTES", "KZT:RUB")
	viper.SetDefault("TWELVE_DATA_API_KEY", "")
	viper.SetDefault("TWELVE_DATA_BASE_URL", "https://api.twelvedata.com")
	viper.SetDefault("EXCHANGE_CURRENCIES", "EUR/USD,RUB/USD")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "24h")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.BaseCurrency = strings.ToUpper(viper.GetString("LIMIT_CURRENCY"))

	defaultLimit, err := decimal.NewFromString(viper.GetString("DEFAULT_MONTHLY_LIMIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MONTHLY_LIMIT: %w", err)
	}
	if defaultLimit.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("DEFAULT_MONTHLY_LIMIT must be positive, got %s", defaultLimit)
	}
	cfg.DefaultMonthlyLimit = defaultLimit

	cfg.BridgeRoutes, err = ParseBridgeRoutes(viper.GetString("BRIDGE_ROUTES"))
	if err != nil {
		return nil, err
	}

	cfg.TwelveDataAPIKey = viper.GetString("TWELVE_DATA_API_KEY")
	if cfg.TwelveDataAPIKey == "" {
		log.Println("Warning: TWELVE_DATA_API_KEY not set. Rate polling will be disabled.")
	}
	cfg.TwelveDataBaseURL = viper.GetString("TWELVE_DATA_BASE_URL")
	cfg.ExchangePairs = splitAndTrim(viper.GetString("EXCHANGE_CURRENCIES"))

	refreshStr := viper.GetString("RATE_REFRESH_INTERVAL")
	refreshInterval, err := time.ParseDuration(refreshStr)
	if err != nil {
		refreshInterval = 24 * time.Hour
		log.Printf("Warning: Invalid value for RATE_REFRESH_INTERVAL (%q). Defaulting to %s.\n", refreshStr, refreshInterval)
	}
	cfg.RateRefreshInterval = refreshInterval

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

// ParseBridgeRoutes parses a comma-separated list of source:bridge pairs,
// e.g. "KZT:RUB" means KZT rates into the base currency may be derived
// through RUB.
func ParseBridgeRoutes(raw string) (map[string]string, error) {
	routes := make(map[string]string)
	for _, entry := range splitAndTrim(raw) {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 || len(parts[0]) != 3 || len(parts[1]) != 3 {
			return nil, fmt.Errorf("invalid bridge route %q, expected SRC:BRG with 3-letter codes", entry)
		}
		routes[strings.ToUpper(parts[0])] = strings.ToUpper(parts[1])
	}
	return routes, nil
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
