package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS,default=*"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=2s"`
	SnapshotInterval  time.Duration `env:"SNAPSHOT_INTERVAL,default=30s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=1m"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	JwtSecret         string        `env:"JWT_SECRET,required=true"`
	PhotoDir          string        `env:"PHOTO_DIR,default=./static"`
	PhotoBaseURL      string        `env:"PHOTO_BASE_URL,default=http://localhost:8080/static"`
	PhotoFetchTimeout time.Duration `env:"PHOTO_FETCH_TIMEOUT,default=10s"`
	DebugPort         int           `env:"DEBUG_PORT,default=8081"`
}

// Validate rejects values the env tags cannot express.
func (c Config) Validate() error {
	if len(c.JwtSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters, got %d", len(c.JwtSecret))
	}
	for name, d := range map[string]time.Duration{
		"RESTART_INTERVAL":    c.RestartInterval,
		"SNAPSHOT_INTERVAL":   c.SnapshotInterval,
		"HEARTBEAT_INTERVAL":  c.HeartbeatInterval,
		"AUTH_TOKEN_DURATION": c.AuthTokenDuration,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
