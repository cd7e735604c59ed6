package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Ledger policy defaults.
	DailyTargetDefault decimal.Decimal // KSH
	FareSplitPercent   decimal.Decimal // driver's target share of a fare

	// Operating-hours window; postings outside it warn but never fail.
	OperatingHoursStart string // "HH:MM"
	OperatingHoursEnd   string // "HH:MM"

	// Process-wide default for the per-driver Follow Global payout mode.
	InstantPayoutEnabled bool

	PayoutAPIURL string
	PayoutAPIKey string

	RateLimit string // ulule/limiter formatted rate, e.g. "120-M"
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("JWT_ISSUER", "driver-ledger-app")
	viper.SetDefault("DAILY_TARGET_DEFAULT", "3000")
	viper.SetDefault("FARE_SPLIT_PERCENT", "60")
	viper.SetDefault("OPERATING_HOURS_START", "05:00")
	viper.SetDefault("OPERATING_HOURS_END", "23:00")
	viper.SetDefault("INSTANT_PAYOUT_ENABLED", false)
	viper.SetDefault("PAYOUT_API_URL", "")
	viper.SetDefault("PAYOUT_API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 12 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION (%q). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.DailyTargetDefault, err = decimal.NewFromString(viper.GetString("DAILY_TARGET_DEFAULT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_TARGET_DEFAULT: %w", err)
	}
	cfg.FareSplitPercent, err = decimal.NewFromString(viper.GetString("FARE_SPLIT_PERCENT"))
	if err != nil {
		return nil, fmt.Errorf("invalid FARE_SPLIT_PERCENT: %w", err)
	}
	if cfg.FareSplitPercent.IsNegative() || cfg.FareSplitPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("FARE_SPLIT_PERCENT must be between 0 and 100, got %s", cfg.FareSplitPercent)
	}

	cfg.OperatingHoursStart = viper.GetString("OPERATING_HOURS_START")
	cfg.OperatingHoursEnd = viper.GetString("OPERATING_HOURS_END")
	if _, err := parseClock(cfg.OperatingHoursStart); err != nil {
		return nil, fmt.Errorf("invalid OPERATING_HOURS_START: %w", err)
	}
	if _, err := parseClock(cfg.OperatingHoursEnd); err != nil {
		return nil, fmt.Errorf("invalid OPERATING_HOURS_END: %w", err)
	}

	cfg.InstantPayoutEnabled = viper.GetBool("INSTANT_PAYOUT_ENABLED")
	cfg.PayoutAPIURL = viper.GetString("PAYOUT_API_URL")
	cfg.PayoutAPIKey = viper.GetString("PAYOUT_API_KEY")
	if cfg.PayoutAPIURL == "" {
		log.Println("Warning: PAYOUT_API_URL not set. Outbound payouts will fail to dispatch.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

// parseClock parses an "HH:MM" string into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WithinOperatingHours reports whether t falls inside the configured
// operating window. Windows crossing midnight are supported.
func (c *Config) WithinOperatingHours(t time.Time) bool {
	start, err := parseClock(c.OperatingHoursStart)
	if err != nil {
		return true
	}
	end, err := parseClock(c.OperatingHoursEnd)
	if err != nil {
		return true
	}
	minutes := t.Hour()*60 + t.Minute()
	if start <= end {
		return minutes >= start && minutes < end
	}
	return minutes >= start || minutes < end
}
