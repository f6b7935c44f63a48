package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string `yaml:"env"`
	HTTPPort string `yaml:"http_port"`
	RateRPS  int    `yaml:"rate_rps"`
	Migrate  bool   `yaml:"migrate"`

	Backend struct {
		Driver    string `yaml:"driver"` // postgres | memory
		URL       string `yaml:"url"`
		PublicKey string `yaml:"public_key"`
		Schema    string `yaml:"schema"`
		Channel   string `yaml:"channel"`
	} `yaml:"backend"`

	Balance struct {
		Table string `yaml:"table"`
		Field string `yaml:"field"`
	} `yaml:"balance"`

	Dashboard struct {
		Mode        string `yaml:"mode"` // static | live
		MockBalance string `yaml:"mock_balance"`
		Holder      string `yaml:"holder"`
		AccountType string `yaml:"account_type"`
		AccountNo   string `yaml:"account_number"`
		IFSC        string `yaml:"ifsc"`
		UPIID       string `yaml:"upi_id"`
	} `yaml:"dashboard"`

	Auth struct {
		Mode       string        `yaml:"mode"` // static | store
		LoginID    string        `yaml:"login_id"`
		Secret     string        `yaml:"secret"`
		Delay      time.Duration `yaml:"delay"`
		AccessKey  string        `yaml:"access_secret"`
		RefreshKey string        `yaml:"refresh_secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
		Issuer     string        `yaml:"issuer"`
	} `yaml:"auth"`

	ReportCron string `yaml:"report_cron"`
}

// Load reads the optional YAML file at path, then .env, then the process
// environment. Later sources override earlier ones; defaults fill the rest.
func Load(path string) (Config, error) {
	var cfg Config
	presetDurations(&cfg)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(c *Config) error {
	set(&c.Env, "APP_ENV")
	set(&c.HTTPPort, "HTTP_PORT")
	if v := os.Getenv("RATE_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_RPS: %w", err)
		}
		c.RateRPS = n
	}
	if v := os.Getenv("APP_MIGRATE"); v != "" {
		c.Migrate = v == "true"
	}

	set(&c.Backend.Driver, "BACKEND_DRIVER")
	set(&c.Backend.URL, "BACKEND_URL")
	set(&c.Backend.PublicKey, "BACKEND_PUBLIC_KEY")
	set(&c.Backend.Schema, "BACKEND_SCHEMA")
	set(&c.Backend.Channel, "BACKEND_CHANNEL")

	set(&c.Balance.Table, "BALANCE_TABLE")
	set(&c.Balance.Field, "BALANCE_FIELD")

	set(&c.Dashboard.Mode, "DASHBOARD_MODE")
	set(&c.Dashboard.MockBalance, "DASHBOARD_MOCK_BALANCE")

	set(&c.Auth.Mode, "AUTH_MODE")
	set(&c.Auth.LoginID, "LOGIN_ID")
	set(&c.Auth.Secret, "LOGIN_SECRET")
	set(&c.Auth.AccessKey, "JWT_ACCESS_SECRET")
	set(&c.Auth.RefreshKey, "JWT_REFRESH_SECRET")
	set(&c.Auth.Issuer, "JWT_ISSUER")
	for key, dst := range map[string]*time.Duration{
		"LOGIN_DELAY":     &c.Auth.Delay,
		"JWT_ACCESS_TTL":  &c.Auth.AccessTTL,
		"JWT_REFRESH_TTL": &c.Auth.RefreshTTL,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	set(&c.ReportCron, "REPORT_CRON")
	return nil
}

// presetDurations runs before any source is read, so an explicit zero from
// YAML or the environment survives. String defaults come last instead
// because an empty string means unset.
func presetDurations(c *Config) {
	c.Auth.Delay = 1500 * time.Millisecond
	c.Auth.AccessTTL = 15 * time.Minute
	c.Auth.RefreshTTL = 24 * time.Hour
}

func applyDefaults(c *Config) {
	def(&c.Env, "dev")
	def(&c.HTTPPort, "8080")
	if c.RateRPS == 0 {
		c.RateRPS = 100
	}

	def(&c.Backend.Driver, "postgres")
	def(&c.Backend.Schema, "public")
	def(&c.Backend.Channel, "balance_changes")

	def(&c.Balance.Table, "accounts")
	def(&c.Balance.Field, "balance")

	def(&c.Dashboard.Mode, "live")
	def(&c.Dashboard.MockBalance, "85158")
	def(&c.Dashboard.Holder, "Demo Account Holder")
	def(&c.Dashboard.AccountType, "Savings Account")
	def(&c.Dashboard.AccountNo, "0000000000")
	def(&c.Dashboard.IFSC, "DEMO0000001")
	def(&c.Dashboard.UPIID, "demo@upi")

	def(&c.Auth.Mode, "static")
	def(&c.Auth.LoginID, "DEMOUSER00")
	def(&c.Auth.Secret, "changeme")
	def(&c.Auth.AccessKey, "changeme-access")
	def(&c.Auth.RefreshKey, "changeme-refresh")
	def(&c.Auth.Issuer, "netbank-dashboard")

	def(&c.ReportCron, "@every 1m")
}

// Validate checks mode values and the settings each mode needs.
func (c Config) Validate() error {
	switch c.Backend.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("backend.driver must be postgres or memory, got %q", c.Backend.Driver)
	}
	switch c.Dashboard.Mode {
	case "static", "live":
	default:
		return fmt.Errorf("dashboard.mode must be static or live, got %q", c.Dashboard.Mode)
	}
	switch c.Auth.Mode {
	case "static", "store":
	default:
		return fmt.Errorf("auth.mode must be static or store, got %q", c.Auth.Mode)
	}
	if c.Auth.Delay < 0 {
		return errors.New("auth.delay must not be negative")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if strings.TrimSpace(c.Balance.Field) == "" {
		return errors.New("balance.field is required")
	}
	if c.Backend.Driver == "postgres" && c.Backend.URL == "" {
		if c.Dashboard.Mode == "live" || c.Auth.Mode == "store" || c.Migrate {
			return errors.New("backend.url is required for the postgres driver")
		}
	}
	if c.Auth.Mode == "store" && c.Backend.Driver != "postgres" {
		return errors.New("auth.mode=store needs the postgres driver")
	}
	return nil
}

func set(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration overrides dst when key is set; "0" is a valid value.
func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func def(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
