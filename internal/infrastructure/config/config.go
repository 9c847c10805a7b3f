package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
	ERP      ERPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the local SQLite store settings. The store backs the
// local ERP backend and the durable settings table.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// ERPConfig selects the active backend and carries per-vendor settings.
type ERPConfig struct {
	// Backend is the active backend code: p21, inform or local
	Backend string
	P21     P21Config
	Inform  InformConfig
}

// P21Config holds Prophet 21 connection settings.
type P21Config struct {
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Username       string
	Password       string
	Enabled        bool
	MultiWarehouse bool
	CompanyNumber  string
	Operator       string
	TimeoutSeconds int
}

// InformConfig holds Inform gateway connection settings.
type InformConfig struct {
	BaseURL        string
	Username       string
	Password       string
	Enabled        bool
	MultiWarehouse bool
	CompanyNumber  string
	Operator       string
	ClientCode     string
	TimeoutSeconds int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ERP_ prefix (e.g., ERP_ERP_P21_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./connector")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		ERP: ERPConfig{
			Backend: v.GetString("erp.backend"),
			P21: P21Config{
				BaseURL:        v.GetString("erp.p21.base_url"),
				TokenURL:       v.GetString("erp.p21.token_url"),
				ClientID:       v.GetString("erp.p21.client_id"),
				ClientSecret:   v.GetString("erp.p21.client_secret"),
				Username:       v.GetString("erp.p21.username"),
				Password:       v.GetString("erp.p21.password"),
				Enabled:        v.GetBool("erp.p21.enabled"),
				MultiWarehouse: v.GetBool("erp.p21.multi_warehouse"),
				CompanyNumber:  v.GetString("erp.p21.company_number"),
				Operator:       v.GetString("erp.p21.operator"),
				TimeoutSeconds: v.GetInt("erp.p21.timeout_seconds"),
			},
			Inform: InformConfig{
				BaseURL:        v.GetString("erp.inform.base_url"),
				Username:       v.GetString("erp.inform.username"),
				Password:       v.GetString("erp.inform.password"),
				Enabled:        v.GetBool("erp.inform.enabled"),
				MultiWarehouse: v.GetBool("erp.inform.multi_warehouse"),
				CompanyNumber:  v.GetString("erp.inform.company_number"),
				Operator:       v.GetString("erp.inform.operator"),
				ClientCode:     v.GetString("erp.inform.client_code"),
				TimeoutSeconds: v.GetInt("erp.inform.timeout_seconds"),
			},
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-connector"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "connector.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// With no ERP configured the local store stands in.
	if cfg.ERP.Backend == "" {
		cfg.ERP.Backend = "local"
	}
	if cfg.ERP.P21.TimeoutSeconds == 0 {
		cfg.ERP.P21.TimeoutSeconds = 30
	}
	if cfg.ERP.Inform.TimeoutSeconds == 0 {
		cfg.ERP.Inform.TimeoutSeconds = 30
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.ERP.Backend {
	case "p21", "inform", "local":
	default:
		return fmt.Errorf("erp.backend must be one of p21, inform, local; got %q", c.ERP.Backend)
	}

	if c.ERP.Backend == "p21" && !c.ERP.P21.Enabled {
		return fmt.Errorf("erp.p21.enabled must be true when erp.backend is p21")
	}
	if c.ERP.Backend == "inform" && !c.ERP.Inform.Enabled {
		return fmt.Errorf("erp.inform.enabled must be true when erp.backend is inform")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.ERP.P21.Enabled && c.ERP.P21.ClientSecret == "" {
			return fmt.Errorf("erp.p21.client_secret is required in production")
		}
		if c.ERP.Inform.Enabled && c.ERP.Inform.Password == "" {
			return fmt.Errorf("erp.inform.password is required in production")
		}
	}

	return nil
}
