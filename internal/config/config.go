package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"medexpenses/internal/codec"
)

type Config struct {
	Env                string        `mapstructure:"ENV"`
	Port               string        `mapstructure:"PORT"`
	UIPort             string        `mapstructure:"UI_PORT"`
	APIBaseURL         string        `mapstructure:"API_BASE_URL"`
	DBDriver           string        `mapstructure:"DB_DRIVER"`
	DBPath             string        `mapstructure:"DB_PATH"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	FernetKey          string        `mapstructure:"FERNET_KEY"`
	ModelPath          string        `mapstructure:"MODEL_PATH"`
	RedisURL           string        `mapstructure:"REDIS_URL"`
	PredictionCacheTTL time.Duration `mapstructure:"PREDICTION_CACHE_TTL"`
	JWTSecretKey       string        `mapstructure:"JWT_SECRET_KEY"`
	JWTTTL             time.Duration `mapstructure:"JWT_TTL"`
}

var keys = []string{
	"ENV", "PORT", "UI_PORT", "API_BASE_URL", "DB_DRIVER", "DB_PATH", "DATABASE_URL",
	"FERNET_KEY", "MODEL_PATH", "REDIS_URL", "PREDICTION_CACHE_TTL", "JWT_SECRET_KEY", "JWT_TTL",
}

// Load reads the optional env files, then the process environment, and
// validates the result. A missing or malformed FERNET_KEY is an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("UI_PORT", "8501")
	v.SetDefault("API_BASE_URL", "http://127.0.0.1:8000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "data/db_insurance.db")
	v.SetDefault("MODEL_PATH", "data/charges_model.json")
	v.SetDefault("PREDICTION_CACHE_TTL", "10m")
	v.SetDefault("JWT_TTL", "12h")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to start with.
func (c *Config) Validate() error {
	if c.FernetKey == "" {
		return fmt.Errorf("FERNET_KEY is required; refusing to start without an encryption key")
	}
	if _, err := codec.NewCodec(c.FernetKey); err != nil {
		return fmt.Errorf("FERNET_KEY is not a valid key: %w", err)
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required when DB_DRIVER is \"sqlite\"")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is \"postgres\"")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be \"sqlite\" or \"postgres\", got %q", c.DBDriver)
	}

	if c.JWTSecretKey != "" && c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive when JWT_SECRET_KEY is set")
	}
	return nil
}
