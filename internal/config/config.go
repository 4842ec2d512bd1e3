package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string   `mapstructure:"PORT"`
	Env                 string   `mapstructure:"ENV"`
	DatabaseURL         string   `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret           string   `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes     int      `mapstructure:"TOKEN_TTL_MINUTES"`
	CORSOrigins         []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int      `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeoutSecs  int      `mapstructure:"REQUEST_TIMEOUT_SECS"`
	BodyLimit           string   `mapstructure:"BODY_LIMIT"`
	HistoryEmptyAsError bool     `mapstructure:"HISTORY_EMPTY_AS_ERROR"`
	ScoreSevereAt       int      `mapstructure:"SCORE_SEVERE_AT"`
	ScoreModerateAt     int      `mapstructure:"SCORE_MODERATE_AT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT_SECS", 30)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("HISTORY_EMPTY_AS_ERROR", true)
	v.SetDefault("SCORE_SEVERE_AT", 15)
	v.SetDefault("SCORE_MODERATE_AT", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("REQUEST_TIMEOUT_SECS")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("HISTORY_EMPTY_AS_ERROR")
	v.BindEnv("SCORE_SEVERE_AT")
	v.BindEnv("SCORE_MODERATE_AT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT_SECRET must be set so that real token verification is enforced, and
// the score thresholds must stay ordered so classification stays total.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.ScoreModerateAt <= 0 || c.ScoreSevereAt <= 0 {
		return fmt.Errorf("score thresholds must be positive (moderate=%d, severe=%d)",
			c.ScoreModerateAt, c.ScoreSevereAt)
	}
	if c.ScoreModerateAt >= c.ScoreSevereAt {
		return fmt.Errorf("SCORE_MODERATE_AT (%d) must be below SCORE_SEVERE_AT (%d)",
			c.ScoreModerateAt, c.ScoreSevereAt)
	}
	if c.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}
	return nil
}
