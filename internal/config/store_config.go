package config

import (
	"os"
	"path/filepath"
)

type StoreBackend string

const (
	StoreBackendFile   StoreBackend = "file"
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

const (
	storeBackendVar   = "STORE_BACKEND"
	sessionFileVar    = "TICKETCTL_SESSION_FILE"
	redisAddrVar      = "REDIS_ADDR"
	redisPasswordVar  = "REDIS_PASSWORD"
	redisDBVar        = "REDIS_DB"
	redisKeyPrefixVar = "REDIS_KEY_PREFIX"
)

type Store struct {
	values FileValues
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() StoreBackend {
	switch backend := StoreBackend(s.values.Lookup(storeBackendVar, string(StoreBackendFile))); backend {
	case StoreBackendRedis, StoreBackendMemory:
		return backend
	default:
		return StoreBackendFile
	}
}

// GetSessionFile returns the path of the file backed token store,
// defaulting to $XDG_CONFIG_HOME/ticketctl/session.json.
func (s Store) GetSessionFile() string {
	if p := s.values.Lookup(sessionFileVar, ""); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ticketctl", "session.json")
}

func (s Store) GetRedisAddr() string {
	return s.values.Lookup(redisAddrVar, "localhost:6379")
}

func (s Store) GetRedisPassword() string {
	return s.values.Lookup(redisPasswordVar, "")
}

func (s Store) GetRedisDB() int {
	return getInt(s.values, redisDBVar, 0)
}

func (s Store) GetRedisKeyPrefix() string {
	return s.values.Lookup(redisKeyPrefixVar, "ticketctl:session:")
}
