package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all runtime configuration, loaded once at startup.
//
// JWTSecret signs every issued bearer token; it is required and must never be
// logged or returned to clients.
type Config struct {
	HTTPAddr string `env:"ARTICLES_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel string `env:"ARTICLES_LOG_LEVEL" envDefault:"info"`

	ReadHeaderTimeout time.Duration `env:"ARTICLES_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"ARTICLES_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"ARTICLES_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"ARTICLES_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"ARTICLES_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`
	MaxBodyBytes      int64         `env:"ARTICLES_HTTP_MAX_BODY_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"ARTICLES_DATABASE_URL"`
	DBMaxConns  int32  `env:"ARTICLES_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"ARTICLES_DB_MIN_CONNS" envDefault:"0"`

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool `env:"ARTICLES_READINESS_REQUIRE_DB" envDefault:"false"`

	JWTSecret string `env:"ARTICLES_JWT_SECRET"`

	GoogleClientID     string `env:"ARTICLES_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"ARTICLES_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"ARTICLES_GOOGLE_REDIRECT_URL"`
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
