package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	DBPath            string        `mapstructure:"PLANNER_DB_PATH"`
	Addr              string        `mapstructure:"PLANNER_ADDR"`
	TimeZone          string        `mapstructure:"PLANNER_TIME_ZONE"`
	CalendarProvider  string        `mapstructure:"PLANNER_CALENDAR_PROVIDER"`
	UpcomingLimit     int64         `mapstructure:"PLANNER_UPCOMING_LIMIT"`
	PostLoginURL      string        `mapstructure:"PLANNER_POST_LOGIN_URL"`
	CookieSecure      bool          `mapstructure:"PLANNER_COOKIE_SECURE"`
	SessionExpiration time.Duration `mapstructure:"PLANNER_SESSION_EXPIRATION"`
	LogLevel          string        `mapstructure:"PLANNER_LOG_LEVEL"`
	LogFormat         string        `mapstructure:"PLANNER_LOG_FORMAT"`
}

var defaults = map[string]any{
	"GOOGLE_REDIRECT_URL":        "http://localhost:3000/auth/google/callback",
	"PLANNER_DB_PATH":            DefaultDBPath(),
	"PLANNER_ADDR":               ":3000",
	"PLANNER_TIME_ZONE":          "Europe/Madrid",
	"PLANNER_CALENDAR_PROVIDER":  "google",
	"PLANNER_UPCOMING_LIMIT":     50,
	"PLANNER_POST_LOGIN_URL":     "/",
	"PLANNER_COOKIE_SECURE":      false,
	"PLANNER_SESSION_EXPIRATION": "720h",
	"PLANNER_LOG_LEVEL":          "info",
	"PLANNER_LOG_FORMAT":         "text",
}

var envs = []string{
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
	"PLANNER_DB_PATH", "PLANNER_ADDR", "PLANNER_TIME_ZONE", "PLANNER_CALENDAR_PROVIDER",
	"PLANNER_UPCOMING_LIMIT", "PLANNER_POST_LOGIN_URL", "PLANNER_COOKIE_SECURE",
	"PLANNER_SESSION_EXPIRATION", "PLANNER_LOG_LEVEL", "PLANNER_LOG_FORMAT",
}

func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "uniplanner", "planner.db")
}

// Load reads envFile into the process environment (variables already set
// win) and then builds the config from the environment. An empty envFile
// means an optional ".env" in the working directory.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for _, env := range envs {
		if err := v.BindEnv(env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("config: loading %s: %w", envFile, err)
	}
	return nil
}

// Validate checks what the HTTP server needs to run.
func (c Config) Validate() error {
	var errs []error
	if c.GoogleClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required"))
	}
	if c.GoogleClientSecret == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_SECRET is required"))
	}
	if c.UpcomingLimit <= 0 {
		errs = append(errs, errors.New("PLANNER_UPCOMING_LIMIT must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location returns the configured IANA zone. "Local" is not accepted.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "Local" {
		return nil, fmt.Errorf("PLANNER_TIME_ZONE: %q is not an IANA time zone name", c.TimeZone)
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("PLANNER_TIME_ZONE: %w", err)
	}
	return loc, nil
}
