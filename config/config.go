// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"name"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnLifetime time.Duration `mapstructure:"conn_lifetime"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type GPTConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type USDAConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	WebhookKey     string `mapstructure:"webhook_key"`
	PriceID        string `mapstructure:"price_id"`
	SuccessURL     string `mapstructure:"success_url"`
	CancelURL      string `mapstructure:"cancel_url"`
	RequirePremium bool   `mapstructure:"require_premium"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	PublicURL string `mapstructure:"public_url"`
}

type NutritionConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	GPT       GPTConfig       `mapstructure:"gpt"`
	USDA      USDAConfig      `mapstructure:"usda"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	S3        S3Config        `mapstructure:"s3"`
	Nutrition NutritionConfig `mapstructure:"nutrition"`
}

var defaults = map[string]interface{}{
	"server.port":             "8080",
	"server.gin_mode":         "release",
	"server.allowed_origins":  []string{"http://localhost:5173", "http://localhost:3000"},
	"server.shutdown_timeout": 10 * time.Second,
	"db.host":                 "localhost",
	"db.port":                 "5432",
	"db.user":                 "postgres",
	"db.password":             "postgres",
	"db.name":                 "nutritrack",
	"db.ssl_mode":             "disable",
	"db.max_open_conns":       20,
	"db.max_idle_conns":       10,
	"db.conn_lifetime":        5 * time.Minute,
	"auth.jwt_secret":         "",
	"auth.token_ttl":          72 * time.Hour,
	"gpt.api_key":             "",
	"gpt.model":               "gpt-4o-mini",
	"gpt.base_url":            "",
	"usda.api_key":            "DEMO_KEY",
	"usda.base_url":           "https://api.nal.usda.gov/fdc/v1",
	"usda.timeout":            10 * time.Second,
	"usda.cache_ttl":          24 * time.Hour,
	"redis.addr":              "",
	"redis.password":          "",
	"redis.db":                0,
	"stripe.secret_key":       "",
	"stripe.webhook_key":      "",
	"stripe.price_id":         "",
	"stripe.success_url":      "http://localhost:5173/billing/success",
	"stripe.cancel_url":       "http://localhost:5173/billing/cancel",
	"stripe.require_premium":  false,
	"telegram.token":          "",
	"s3.region":               "",
	"s3.bucket":               "",
	"s3.public_url":           "",
	"nutrition.timezone":      "UTC",
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("$HOME/.nutritrack")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// DB_HOST overrides db.host and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports configuration that prevents the API from serving.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is not configured")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid nutrition.timezone: %w", err)
	}
	switch c.Server.GinMode {
	case "", gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("invalid server.gin_mode %q: want %s, %s or %s",
			c.Server.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
	return nil
}

// Location resolves the timezone nutritional days are computed in.
func (c *Config) Location() (*time.Location, error) {
	if c.Nutrition.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Nutrition.Timezone)
}

// DSN builds the key/value connection string understood by pgx.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}
