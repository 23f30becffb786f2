package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	SourceGraphQL = "graphql"
	SourceMySQL   = "mysql"
)

type Env struct {
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`

	// Timezone is the IANA zone call dates are shown in.
	Timezone string `envconfig:"APP_TIMEZONE" default:"Local"`

	// CallsSource selects where call records are read from.
	CallsSource string `envconfig:"CALLS_SOURCE" default:"graphql"`

	GraphQL GraphQLEnv
	DB      DBEnv
	Paging  PagingEnv

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`
	CookieSecure       bool     `envconfig:"COOKIE_SECURE" default:"false"`
}

type GraphQLEnv struct {
	URL          string        `envconfig:"GRAPHQL_URL" default:"https://frontend-test-api.aircall.dev/graphql"`
	Token        string        `envconfig:"GRAPHQL_TOKEN"`
	RefreshToken string        `envconfig:"GRAPHQL_REFRESH_TOKEN"`
	Username     string        `envconfig:"GRAPHQL_USERNAME"`
	Password     string        `envconfig:"GRAPHQL_PASSWORD"`
	Timeout      time.Duration `envconfig:"GRAPHQL_TIMEOUT" default:"15s"`
}

type DBEnv struct {
	DSN          string        `envconfig:"DATABASE_DSN"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	MaxLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"10m"`
	MaxIdleTime  time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

type PagingEnv struct {
	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"5"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"100"`
}

// LoadEnv reads configuration from environment variables.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, fmt.Errorf("failed to process env: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Env{}, fmt.Errorf("env validation failed: %w", err)
	}
	return env, nil
}

func (e Env) Validate() error {
	switch e.AppEnv {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("invalid APP_ENV: %s (must be one of: development, staging, production, test)", e.AppEnv)
	}
	if strings.TrimSpace(e.AppAddr) == "" {
		return fmt.Errorf("APP_ADDR must not be empty")
	}
	switch e.CallsSource {
	case SourceGraphQL:
		if strings.TrimSpace(e.GraphQL.URL) == "" {
			return fmt.Errorf("GRAPHQL_URL is required when CALLS_SOURCE=graphql")
		}
		if e.GraphQL.Timeout <= 0 {
			return fmt.Errorf("GRAPHQL_TIMEOUT must be positive")
		}
	case SourceMySQL:
		if strings.TrimSpace(e.DB.DSN) == "" {
			return fmt.Errorf("DATABASE_DSN is required when CALLS_SOURCE=mysql")
		}
		if e.DB.MaxIdleConns > e.DB.MaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)",
				e.DB.MaxIdleConns, e.DB.MaxOpenConns)
		}
	default:
		return fmt.Errorf("invalid CALLS_SOURCE: %s (must be graphql or mysql)", e.CallsSource)
	}
	if e.Paging.DefaultPageSize < 1 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be at least 1")
	}
	if e.Paging.MaxPageSize < e.Paging.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) cannot be below DEFAULT_PAGE_SIZE (%d)",
			e.Paging.MaxPageSize, e.Paging.DefaultPageSize)
	}
	if _, err := e.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if len(e.AllowedOrigins()) == 0 {
		return fmt.Errorf("at least one CORS origin must be specified")
	}
	return nil
}

func (e Env) IsProduction() bool {
	return e.AppEnv == "production"
}

// Location resolves APP_TIMEZONE. Empty and "Local" mean the host zone.
func (e Env) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(e.Timezone)
}

// AllowedOrigins returns the trimmed, non-empty CORS origins.
func (e Env) AllowedOrigins() []string {
	out := make([]string, 0, len(e.CORSAllowedOrigins))
	for _, o := range e.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
