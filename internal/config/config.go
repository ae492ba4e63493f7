package config

import (
	"time"

	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	StoreConfig
	SessionConfig
	TicketConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetLogLevel() string
	GetTraceRequests() bool
}

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetSessionFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type SessionConfig interface {
	GetTokenExpiryMargin() time.Duration
}

type TicketConfig interface {
	GetDefaultRenewDays() int
}

type mainConfig struct {
	EnvVars
	Store
	Session
	Tickets
}

// New returns a Config backed by environment variables only.
func New() Config {
	return newMainConfig(FileValues{})
}

// Load returns a Config where environment variables take precedence over the
// values in the YAML file at path. An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	values, err := ReadFileValues(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config.Load]")
	}
	return newMainConfig(values), nil
}

func newMainConfig(values FileValues) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{values: values},
		Store:   Store{values: values},
		Session: Session{values: values},
		Tickets: Tickets{values: values},
	}
}
