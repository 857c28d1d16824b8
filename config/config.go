package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	MAX_PRICE=10
//	WORKERS=8
//	OUTPUT_PATH=public/stocks.json
//	REFERENCE_SCRIPT=scripts/fetch_b3_data.R
//	HISTORY_ENABLED=true
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=b3penny
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Snapshot  SnapshotConfig  // Run parameters and output location
	Reference ReferenceConfig // External COTAHIST generator
	Provider  ProviderConfig  // Market data provider client
	Scheduler SchedulerConfig // Periodic refresh
	History   HistoryConfig   // Optional run history store
	Postgres  PostgresConfig  // PostgreSQL connection settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   // The TCP port the HTTP server will listen on (e.g., "8080")
	StaticDir          string   // Built frontend served for non-API paths; empty disables it
	CORSOrigins        []string // Allowed origins; empty allows any
	RateLimitPerMinute int      // Per-IP request budget
	RateLimitBurst     int      // Per-IP burst size
}

// SnapshotConfig defines the default run parameters and file locations.
//
// Fields:
//   - MaxPrice: price ceiling for accepted securities (> 0).
//   - Workers: provider fetch concurrency (> 0).
//   - OutputPath: snapshot document written by every run.
//   - SeedFile: optional {"tickers": [...]} override of the built-in seed list.
//   - Timezone: IANA zone used for the run clock and trading hours.
type SnapshotConfig struct {
	MaxPrice   float64
	Workers    int
	OutputPath string
	SeedFile   string
	Timezone   string
}

// ReferenceConfig describes the external generator producing COTAHIST data.
type ReferenceConfig struct {
	Enabled     bool
	Interpreter string
	Script      string
	OutputPath  string
	MaxPrice    float64 // exported to the generator as MAX_PRECO
}

// ProviderConfig configures the market data provider client.
type ProviderConfig struct {
	BaseURL      string
	SymbolSuffix string
	Timeout      time.Duration
	RateLimit    int // requests per second shared by all workers
	Crumb        bool
}

// SchedulerConfig controls the automatic refresh in API mode.
type SchedulerConfig struct {
	Enabled  bool
	Schedule string // standard 5-field cron expression
}

// HistoryConfig toggles persistence of every written snapshot.
type HistoryConfig struct {
	Enabled bool
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	setDefaults()

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			StaticDir:          viper.GetString("STATIC_DIR"),
			CORSOrigins:        splitList(viper.GetString("CORS_ORIGINS")),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			RateLimitBurst:     viper.GetInt("RATE_LIMIT_BURST"),
		},
		Snapshot: SnapshotConfig{
			MaxPrice:   viper.GetFloat64("MAX_PRICE"),
			Workers:    viper.GetInt("WORKERS"),
			OutputPath: viper.GetString("OUTPUT_PATH"),
			SeedFile:   viper.GetString("SEED_FILE"),
			Timezone:   viper.GetString("TIMEZONE"),
		},
		Reference: ReferenceConfig{
			Enabled:     viper.GetBool("REFERENCE_ENABLED"),
			Interpreter: viper.GetString("REFERENCE_INTERPRETER"),
			Script:      viper.GetString("REFERENCE_SCRIPT"),
			OutputPath:  viper.GetString("REFERENCE_OUTPUT"),
			MaxPrice:    viper.GetFloat64("REFERENCE_MAX_PRICE"),
		},
		Provider: ProviderConfig{
			BaseURL:      viper.GetString("PROVIDER_BASE_URL"),
			SymbolSuffix: viper.GetString("PROVIDER_SYMBOL_SUFFIX"),
			Timeout:      viper.GetDuration("PROVIDER_TIMEOUT"),
			RateLimit:    viper.GetInt("PROVIDER_RATE_LIMIT"),
			Crumb:        viper.GetBool("PROVIDER_CRUMB"),
		},
		Scheduler: SchedulerConfig{
			Enabled:  viper.GetBool("SCHEDULER_ENABLED"),
			Schedule: viper.GetString("UPDATE_SCHEDULE"),
		},
		History: HistoryConfig{
			Enabled: viper.GetBool("HISTORY_ENABLED"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STATIC_DIR", "dist")
	viper.SetDefault("CORS_ORIGINS", "")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	viper.SetDefault("RATE_LIMIT_BURST", 30)

	viper.SetDefault("MAX_PRICE", 10.0)
	viper.SetDefault("WORKERS", 8)
	viper.SetDefault("OUTPUT_PATH", "public/stocks.json")
	viper.SetDefault("SEED_FILE", "scripts/base_tickers.json")
	viper.SetDefault("TIMEZONE", "America/Sao_Paulo")

	viper.SetDefault("REFERENCE_ENABLED", true)
	viper.SetDefault("REFERENCE_INTERPRETER", "Rscript")
	viper.SetDefault("REFERENCE_SCRIPT", "scripts/fetch_b3_data.R")
	viper.SetDefault("REFERENCE_OUTPUT", "data/cotahist.json")
	viper.SetDefault("REFERENCE_MAX_PRICE", 15.0)

	viper.SetDefault("PROVIDER_BASE_URL", "https://query2.finance.yahoo.com")
	viper.SetDefault("PROVIDER_SYMBOL_SUFFIX", ".SA")
	viper.SetDefault("PROVIDER_TIMEOUT", "15s")
	viper.SetDefault("PROVIDER_RATE_LIMIT", 20)
	viper.SetDefault("PROVIDER_CRUMB", true)

	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("UPDATE_SCHEDULE", "*/30 * * * *")

	viper.SetDefault("HISTORY_ENABLED", false)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "b3penny")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Snapshot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validateConfig terminates the application when problems() reports any
// missing or invalid variable.
func validateConfig() {
	if issues := problems(AppConfig); len(issues) > 0 {
		log.Fatalf("❌ Invalid configuration: %v\n", issues)
	}
}

// problems lists every missing or invalid variable. Postgres settings are
// only required when the history store is enabled.
func problems(cfg Config) []string {
	var out []string

	if cfg.Server.Port == "" {
		out = append(out, "SERVER_PORT")
	}
	if cfg.Snapshot.MaxPrice <= 0 {
		out = append(out, "MAX_PRICE (must be > 0)")
	}
	if cfg.Snapshot.Workers <= 0 {
		out = append(out, "WORKERS (must be > 0)")
	}
	if cfg.Snapshot.OutputPath == "" {
		out = append(out, "OUTPUT_PATH")
	}
	if _, err := time.LoadLocation(cfg.Snapshot.Timezone); cfg.Snapshot.Timezone == "" || err != nil {
		out = append(out, "TIMEZONE (unknown zone)")
	}
	if cfg.Reference.Enabled && (cfg.Reference.Script == "" || cfg.Reference.OutputPath == "") {
		out = append(out, "REFERENCE_SCRIPT/REFERENCE_OUTPUT")
	}
	if cfg.Provider.BaseURL == "" {
		out = append(out, "PROVIDER_BASE_URL")
	}
	if cfg.Scheduler.Enabled && cfg.Scheduler.Schedule == "" {
		out = append(out, "UPDATE_SCHEDULE")
	}

	if cfg.History.Enabled {
		if cfg.Postgres.Host == "" {
			out = append(out, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			out = append(out, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			out = append(out, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			out = append(out, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			out = append(out, "POSTGRES_DB")
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
