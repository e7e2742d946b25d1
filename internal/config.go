package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	TerminalDB    DatabaseConfig      `mapstructure:"terminal_db"`
	DirectoryDB   DatabaseConfig      `mapstructure:"directory_db"`
	DeviceAPI     DeviceAPIConfig     `mapstructure:"device_api"`
	Sync          SyncConfig          `mapstructure:"sync"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig describes one of the two databases the bridge talks to:
// the terminal database (terminals, access logs, sync audit) and the
// directory database (students, employees, photos, face-template ledger).
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type DeviceAPIConfig struct {
	// OverrideHost routes every device call to one host instead of the
	// terminal's own address. Used against simulators and in staging.
	OverrideHost string        `mapstructure:"override_host"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	UserPushInterval   time.Duration `mapstructure:"user_push_interval"`
	LogPullInterval    time.Duration `mapstructure:"log_pull_interval"`
	MaxRecordsPerFetch int           `mapstructure:"max_records_per_fetch"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) Validate() error {
	if c.TerminalDB.Source == "" {
		return errors.New("terminal_db.source is required")
	}
	if c.DirectoryDB.Source == "" {
		return errors.New("directory_db.source is required")
	}
	switch c.TerminalDB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("terminal_db.driver must be postgres or sqlite, got %q", c.TerminalDB.Driver)
	}
	switch c.DirectoryDB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("directory_db.driver must be postgres or sqlite, got %q", c.DirectoryDB.Driver)
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.DeviceAPI.Timeout == 0 {
		c.DeviceAPI.Timeout = 10 * time.Second
	}
	if c.Sync.UserPushInterval == 0 {
		c.Sync.UserPushInterval = 300 * time.Second
	}
	if c.Sync.LogPullInterval == 0 {
		c.Sync.LogPullInterval = 86400 * time.Second
	}
	if c.Sync.MaxRecordsPerFetch == 0 {
		c.Sync.MaxRecordsPerFetch = 100
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// LoadConfigFromEnv builds the configuration from environment variables for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SERVER_PORT", 8080),
		},
		TerminalDB: DatabaseConfig{
			Driver: envString("TERMINAL_DB_DRIVER", "postgres"),
			Source: os.Getenv("TERMINAL_DB_SOURCE"),
		},
		DirectoryDB: DatabaseConfig{
			Driver: envString("DIRECTORY_DB_DRIVER", "postgres"),
			Source: os.Getenv("DIRECTORY_DB_SOURCE"),
		},
		DeviceAPI: DeviceAPIConfig{
			OverrideHost: os.Getenv("DEVICE_API_OVERRIDE_HOST"),
			Timeout:      envDuration("DEVICE_API_TIMEOUT", 10*time.Second),
		},
		Sync: SyncConfig{
			UserPushInterval:   envDuration("SYNC_USER_PUSH_INTERVAL", 300*time.Second),
			LogPullInterval:    envDuration("SYNC_LOG_PULL_INTERVAL", 86400*time.Second),
			MaxRecordsPerFetch: envInt("SYNC_MAX_RECORDS_PER_FETCH", 100),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  envString("LOG_LEVEL", "info"),
				Format: envString("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
