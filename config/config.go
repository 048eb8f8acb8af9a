package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Price source kinds accepted by PRICE_SOURCE.
const (
	SourceYahoo    = "yahoo"
	SourcePostgres = "postgres"
	SourceCSV      = "csv"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	PRICE_SOURCE=postgres
//	CSV_DIR=./data/prices
//	YAHOO_HISTORY_START=1970-01-01
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=pricereturns
//	POSTGRES_SSLMODE=disable
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Source   SourceConfig   // Where daily prices come from
	Postgres PostgresConfig // PostgreSQL connection settings (PRICE_SOURCE=postgres)
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// SourceConfig selects and parameterizes the price source.
//
// Fields:
//   - Kind: "yahoo", "postgres" or "csv".
//   - CSVDir: directory of <TICKER>.csv exports (Kind == "csv").
//   - YahooHistoryStart: first day requested from Yahoo (Kind == "yahoo").
type SourceConfig struct {
	Kind              string
	CSVDir            string
	YahooHistoryStart time.Time
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
// It is populated once via LoadConfig() and read by app.InitializeApp and
// the report mode.
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
//   - If required variables are missing for the selected source,
//     validateConfig() terminates the app with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("PRICE_SOURCE", SourceYahoo)
	viper.SetDefault("CSV_DIR", "./data/prices")
	viper.SetDefault("YAHOO_HISTORY_START", "1970-01-01")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "pricereturns")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Source: SourceConfig{
			Kind:   strings.ToLower(strings.TrimSpace(viper.GetString("PRICE_SOURCE"))),
			CSVDir: viper.GetString("CSV_DIR"),
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

	start, err := time.Parse("2006-01-02", viper.GetString("YAHOO_HISTORY_START"))
	if err != nil {
		log.Fatalf("invalid YAHOO_HISTORY_START %q, expected YYYY-MM-DD: %v", viper.GetString("YAHOO_HISTORY_START"), err)
	}
	AppConfig.Source.YahooHistoryStart = start

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// missingKeys lists the required variables that are unset for the selected source.
func missingKeys(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}

	switch cfg.Source.Kind {
	case SourceYahoo:
	case SourceCSV:
		if cfg.Source.CSVDir == "" {
			missing = append(missing, "CSV_DIR")
		}
	case SourcePostgres:
		if cfg.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if cfg.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if cfg.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	default:
		missing = append(missing, "PRICE_SOURCE (yahoo|postgres|csv)")
	}

	return missing
}

// validateConfig terminates the application if required variables are missing.
func validateConfig() {
	if missing := missingKeys(AppConfig); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
