// Package config binds the service's environment-variable
// configuration (spec.md §6) onto a flat struct via
// github.com/caarlos0/env/v11 struct tags, the configuration library
// already present in the teacher's go.mod.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
)

// Config is the full set of recognized environment variables.
// Defaults mirror spec.md §6's description of each key's purpose.
type Config struct {
	// PersisterThreads sizes the worker pool (spec.md §4.7).
	PersisterThreads int `env:"PERSISTER_THREADS" envDefault:"4"`
	// PersisterPollInterval is how often the monitor lists unclaimed
	// jobs (spec.md §4.7).
	PersisterPollInterval time.Duration `env:"PERSISTER_POLL_SECONDS" envDefault:"30s"`
	// SpeakingMarkerThreshold is the minimum speaking-interval duration
	// the marker handler persists (spec.md §4.3).
	SpeakingMarkerThreshold time.Duration `env:"SPEAKING_MARKER_THRESHOLD" envDefault:"0s"`

	// ServiceEnv names the deployment environment (e.g. "production",
	// "staging"), used only for logging/observability context.
	ServiceEnv string `env:"SERVICE_ENV" envDefault:"development"`
	// DatabaseConnection is a Postgres connection string accepted by
	// pgxpool.New.
	DatabaseConnection string `env:"DATABASE_CONNECTION,required"`
	// ZookeeperHosts is the comma-separated zookeeper ensemble this
	// process registers itself against (internal/zkregistry). spec.md
	// places the registry RPC surface out of scope; this key is still
	// carried so the ambient scaffolding has something to bind to.
	ZookeeperHosts string `env:"ZOOKEEPER_HOSTS"`
	// ServicePidFile is where the process writes its pid for external
	// supervision (internal/pidfile).
	ServicePidFile string `env:"SERVICE_PID_FILE" envDefault:"/var/run/persistsvc.pid"`

	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogFormat selects logrus's text or json formatter.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration from environment")
	}
	return cfg, nil
}
