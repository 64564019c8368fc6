package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Leitner   LeitnerConfig   `yaml:"leitner"`
	Persist   PersistConfig   `yaml:"persist"`
	Session   SessionConfig   `yaml:"session"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Local     LocalConfig     `yaml:"local"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds per-client request limits for the HTTP API.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"             env:"RATE_LIMIT_ENABLED"             env-default:"true"`
	RequestsPerWindow int           `yaml:"requests_per_window" env:"RATE_LIMIT_REQUESTS_PER_WINDOW" env-default:"120"`
	Window            time.Duration `yaml:"window"              env:"RATE_LIMIT_WINDOW"              env-default:"1m"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL"    env-default:"5m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"memorygym"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"24h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// LeitnerConfig holds the box schedule and due-set ordering.
type LeitnerConfig struct {
	IntervalsRaw  string `yaml:"intervals"      env:"LEITNER_INTERVALS"      env-default:"1,3,7,14,30"`
	StudyOrder    string `yaml:"study_order"    env:"LEITNER_STUDY_ORDER"    env-default:"INSERTION"`
	TrainingOrder string `yaml:"training_order" env:"LEITNER_TRAINING_ORDER" env-default:"INSERTION"`

	// Intervals is parsed from IntervalsRaw during validation.
	Intervals []int `yaml:"-" env:"-"`
}

// PersistConfig controls the asynchronous card writer.
type PersistConfig struct {
	BufferSize    int           `yaml:"buffer_size"    env:"PERSIST_BUFFER_SIZE"    env-default:"256"`
	MaxAttempts   int           `yaml:"max_attempts"   env:"PERSIST_MAX_ATTEMPTS"   env-default:"5"`
	InitialWait   time.Duration `yaml:"initial_wait"   env:"PERSIST_INITIAL_WAIT"   env-default:"100ms"`
	MaxWait       time.Duration `yaml:"max_wait"       env:"PERSIST_MAX_WAIT"       env-default:"5s"`
	JitterPercent uint64        `yaml:"jitter_percent" env:"PERSIST_JITTER_PERCENT" env-default:"20"`
	WriteTimeout  time.Duration `yaml:"write_timeout"  env:"PERSIST_WRITE_TIMEOUT"  env-default:"5s"`
}

// SessionConfig controls the in-memory registry of live sessions.
type SessionConfig struct {
	IdleTTL          time.Duration `yaml:"idle_ttl"            env:"SESSION_IDLE_TTL"            env-default:"30m"`
	SweepInterval    time.Duration `yaml:"sweep_interval"      env:"SESSION_SWEEP_INTERVAL"      env-default:"1m"`
	MaxActivePerUser int           `yaml:"max_active_per_user" env:"SESSION_MAX_ACTIVE_PER_USER" env-default:"5"`
	RecentLimit      int           `yaml:"recent_limit"        env:"SESSION_RECENT_LIMIT"        env-default:"10"`

	// Each live training-center stream holds a database connection.
	MaxStreams        int `yaml:"max_streams"          env:"SESSION_MAX_STREAMS"          env-default:"10"`
	MaxStreamsPerUser int `yaml:"max_streams_per_user" env:"SESSION_MAX_STREAMS_PER_USER" env-default:"2"`
}

// LocalConfig holds settings of the local command-line client.
type LocalConfig struct {
	DBPath string `yaml:"db_path" env:"MEMORYGYM_DB" env-default:"memorygym.db"`
	UserID string `yaml:"user_id" env:"MEMORYGYM_USER_ID" env-default:"00000000-0000-0000-0000-000000000001"`
}
