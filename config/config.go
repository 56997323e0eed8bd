package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingSigningKey = errors.New("jwt.secret_key is required")
	ErrInvalidSigningKey = errors.New("jwt.secret_key must be base64 and decode to at least 32 bytes")
)

const minSigningKeyBytes = 32

type Config struct {
	Database struct {
		Host           string `mapstructure:"host"`
		Port           string `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		Name           string `mapstructure:"name"`
		SSLMode        string `mapstructure:"sslmode"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Server struct {
		Port  string `mapstructure:"port"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey        string `mapstructure:"secret_key"`
		Issuer           string `mapstructure:"issuer"`
		Audience         string `mapstructure:"audience"`
		AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	} `mapstructure:"jwt"`
	RefreshToken struct {
		TTLDays                int `mapstructure:"ttl_days"`
		CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes"`
		RetentionHours         int `mapstructure:"retention_hours"`
	} `mapstructure:"refresh_token"`
	Password struct {
		Cost int `mapstructure:"cost"`
	} `mapstructure:"password"`
	Cache struct {
		UserTTLMinutes int `mapstructure:"user_ttl_minutes"`
	} `mapstructure:"cache"`
}

// TokenConfig is the immutable signing configuration handed to the token
// issuer and to the request-authentication middleware.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// AppConfig holds the configuration loaded by LoadConfig.
var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "db/migrations")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.issuer", "storefront-api")
	v.SetDefault("jwt.audience", "storefront-clients")
	v.SetDefault("jwt.access_ttl_minutes", 30)
	v.SetDefault("refresh_token.ttl_days", 7)
	v.SetDefault("refresh_token.cleanup_interval_minutes", 60)
	v.SetDefault("refresh_token.retention_hours", 24)
	v.SetDefault("password.cost", 10)
	v.SetDefault("cache.user_ttl_minutes", 5)
}

// Load reads config.yml from path (if present) and overlays environment
// variables, e.g. JWT_SECRET_KEY for jwt.secret_key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"database.user", "database.password", "database.name", "redis.password", "jwt.secret_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads and validates the configuration into AppConfig.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	AppConfig = *cfg
	return nil
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if _, err := c.signingKey(); err != nil {
		return err
	}
	if c.JWT.AccessTTLMinutes <= 0 {
		return errors.New("jwt.access_ttl_minutes must be positive")
	}
	if c.RefreshToken.TTLDays <= 0 {
		return errors.New("refresh_token.ttl_days must be positive")
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return fmt.Errorf("password.cost must be between 4 and 31, got %d", c.Password.Cost)
	}
	return nil
}

func (c *Config) signingKey() ([]byte, error) {
	if c.JWT.SecretKey == "" {
		return nil, ErrMissingSigningKey
	}
	key, err := base64.StdEncoding.DecodeString(c.JWT.SecretKey)
	if err != nil || len(key) < minSigningKeyBytes {
		return nil, ErrInvalidSigningKey
	}
	return key, nil
}

// TokenConfig decodes the signing key and bundles it with the claim settings.
func (c *Config) TokenConfig() (TokenConfig, error) {
	key, err := c.signingKey()
	if err != nil {
		return TokenConfig{}, err
	}
	return TokenConfig{
		SigningKey: key,
		Issuer:     c.JWT.Issuer,
		Audience:   c.JWT.Audience,
		TTL:        time.Duration(c.JWT.AccessTTLMinutes) * time.Minute,
	}, nil
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshToken.TTLDays) * 24 * time.Hour
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.RefreshToken.CleanupIntervalMinutes) * time.Minute
}

func (c *Config) CleanupRetention() time.Duration {
	return time.Duration(c.RefreshToken.RetentionHours) * time.Hour
}

func (c *Config) UserCacheTTL() time.Duration {
	return time.Duration(c.Cache.UserTTLMinutes) * time.Minute
}

// DatabaseURL builds a postgres URL usable by both lib/pq and golang-migrate.
func (c *Config) DatabaseURL() string {
	d := c.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// SafeDatabaseURL is DatabaseURL without the password, for logging.
func (c *Config) SafeDatabaseURL() string {
	d := c.Database
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", d.User, d.Host, d.Port, d.Name, d.SSLMode)
}
