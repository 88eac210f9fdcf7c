package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	StorageBadger   = "badger"
	StoragePostgres = "postgres"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	HTTPPort             int           `env:"HTTP_PORT,default=8080"`
	GRPCPort             int           `env:"GRPC_PORT,default=9090"`
	SecretKey            string        `env:"SECRET_KEY,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
	StorageDriver        string        `env:"STORAGE_DRIVER,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/badger"`
	DatabaseDSN          string        `env:"DATABASE_DSN"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	AuthTimeout          time.Duration `env:"AUTH_TIMEOUT,default=10s"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=4096"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=10m"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=15s"`
	BacklogThreshold     float64       `env:"BACKLOG_THRESHOLD,default=0.8"`
	AuthRateLimit        int           `env:"AUTH_RATE_LIMIT,default=20"`
	FrontendOrigin       string        `env:"FRONTEND_ORIGIN,default=http://localhost:3000"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}

// Validate checks the combinations struct tags cannot express.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required with STORAGE_DRIVER=%s", StorageBadger)
		}
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required with STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageBadger, StoragePostgres, c.StorageDriver)
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength)
	}
	if c.BacklogThreshold < 0 || c.BacklogThreshold > 1 {
		return fmt.Errorf("BACKLOG_THRESHOLD must be within [0, 1], got %v", c.BacklogThreshold)
	}
	if c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	}
	return nil
}

// AllowedOrigins splits FRONTEND_ORIGIN, a comma separated list.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.FrontendOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

func (c Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GRPCPort)
}
