package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileValues holds settings read from a YAML config file. Keys are the
// lower-cased environment variable names, e.g. api_url or store_backend.
type FileValues map[string]string

// Lookup resolves envVar from the environment first, then the file, then defaultValue.
func (f FileValues) Lookup(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := f[strings.ToLower(envVar)]; ok && value != "" {
		return value
	}
	return defaultValue
}

func ReadFileValues(path string) (FileValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}

	values := make(FileValues, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = strings.TrimSpace(toString(v))
	}
	return values, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "loading %s", p)
		}
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		out, err := yaml.Marshal(t)
		if err != nil {
			return ""
		}
		return string(out)
	}
}
