package config

import (
	"fmt"
	"net/url"
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
	World    WorldConfig
	Carrier  CarrierConfig
	Outbound OutboundConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
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
}

// WorldConfig holds world simulator connection settings
type WorldConfig struct {
	Host            string
	Port            int
	DialTimeout     time.Duration
	ReadTimeout     time.Duration // per framed read; transient timeouts are retried
	ConnectOnStart  bool          // dial the simulator during server startup
	ReconnectTries  int           // attempts for the explicit reconnect utility
	InitialSimSpeed int           // 0 leaves the simulator's default untouched
}

// Address returns the simulator's host:port
func (w *WorldConfig) Address() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// CarrierConfig holds carrier webhook delivery settings
type CarrierConfig struct {
	BaseURL         string
	RequestTimeout  time.Duration
	BreakerMaxFails uint32        // consecutive failures before the breaker opens
	BreakerCooldown time.Duration // open state duration before a probe
}

// OutboundConfig tunes the reliable delivery channels
type OutboundConfig struct {
	RetryInterval time.Duration
	RetryBackoff  time.Duration
	MaxAttempts   int
	CallTimeout   time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with MART_ prefix (e.g., MART_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("MART")
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
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
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
		},
		World: WorldConfig{
			Host:            v.GetString("world.host"),
			Port:            v.GetInt("world.port"),
			DialTimeout:     v.GetDuration("world.dial_timeout"),
			ReadTimeout:     v.GetDuration("world.read_timeout"),
			ConnectOnStart:  v.GetBool("world.connect_on_start"),
			ReconnectTries:  v.GetInt("world.reconnect_tries"),
			InitialSimSpeed: v.GetInt("world.initial_sim_speed"),
		},
		Carrier: CarrierConfig{
			BaseURL:         v.GetString("carrier.base_url"),
			RequestTimeout:  v.GetDuration("carrier.request_timeout"),
			BreakerMaxFails: v.GetUint32("carrier.breaker_max_fails"),
			BreakerCooldown: v.GetDuration("carrier.breaker_cooldown"),
		},
		Outbound: OutboundConfig{
			RetryInterval: v.GetDuration("outbound.retry_interval"),
			RetryBackoff:  v.GetDuration("outbound.retry_backoff"),
			MaxAttempts:   v.GetInt("outbound.max_attempts"),
			CallTimeout:   v.GetDuration("outbound.call_timeout"),
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
		cfg.App.Name = "minimart-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "minimart"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
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
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.World.Host == "" {
		cfg.World.Host = "localhost"
	}
	if cfg.World.Port == 0 {
		cfg.World.Port = 23456
	}
	if cfg.World.DialTimeout == 0 {
		cfg.World.DialTimeout = 10 * time.Second
	}
	if cfg.World.ReadTimeout == 0 {
		cfg.World.ReadTimeout = 5 * time.Second
	}
	if cfg.World.ReconnectTries == 0 {
		cfg.World.ReconnectTries = 5
	}
	if cfg.Carrier.BaseURL == "" {
		cfg.Carrier.BaseURL = "http://localhost:8888"
	}
	if cfg.Carrier.RequestTimeout == 0 {
		cfg.Carrier.RequestTimeout = 10 * time.Second
	}
	if cfg.Carrier.BreakerMaxFails == 0 {
		cfg.Carrier.BreakerMaxFails = 5
	}
	if cfg.Carrier.BreakerCooldown == 0 {
		cfg.Carrier.BreakerCooldown = 30 * time.Second
	}
	if cfg.Outbound.RetryInterval == 0 {
		cfg.Outbound.RetryInterval = time.Second
	}
	if cfg.Outbound.RetryBackoff == 0 {
		cfg.Outbound.RetryBackoff = time.Second
	}
	if cfg.Outbound.MaxAttempts == 0 {
		cfg.Outbound.MaxAttempts = 5
	}
	if cfg.Outbound.CallTimeout == 0 {
		cfg.Outbound.CallTimeout = 10 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
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

	if _, err := url.Parse(c.Carrier.BaseURL); err != nil {
		return fmt.Errorf("carrier.base_url is not a valid URL: %w", err)
	}
	if c.World.Port <= 0 || c.World.Port > 65535 {
		return fmt.Errorf("world.port must be a valid TCP port, got %d", c.World.Port)
	}
	if c.Outbound.MaxAttempts <= 0 {
		return fmt.Errorf("outbound.max_attempts must be positive")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
