package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CHORECAL_SERVER_PORT for server.port.
const EnvPrefix = "CHORECAL"

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	App          AppConfig          `mapstructure:"app"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Reminder     ReminderConfig     `mapstructure:"reminder"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Calendar     CalendarConfig     `mapstructure:"calendar"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`

	// AllowedOrigins are host patterns browsers may open /ws from. Empty
	// accepts any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type GamificationConfig struct {
	// BadgesFile replaces the built-in badge catalog when set.
	BadgesFile string `mapstructure:"badges_file"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"min=1"`
}

type CalendarConfig struct {
	MonthsBefore int `mapstructure:"months_before" validate:"min=0"`
	MonthsAfter  int `mapstructure:"months_after" validate:"min=1"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Location resolves app.timezone. An empty value or "Local" means the
// host's zone.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" || strings.EqualFold(c.App.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// Load reads configuration from defaults, an optional chorecal.yaml in the
// working directory, .env, and CHORECAL_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the directory searched for chorecal.yaml.
func LoadFrom(dir string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigName("chorecal")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.path", "chorecal.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("app.timezone", "Local")

	v.SetDefault("gamification.badges_file", "")

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", "60s")

	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("calendar.months_before", 1)
	v.SetDefault("calendar.months_after", 4)
}

func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	return nil
}
