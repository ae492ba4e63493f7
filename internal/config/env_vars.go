package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	apiURLVar   = "API_URL"
	logLevelVar = "LOG_LEVEL"
	traceVar    = "TICKETCTL_TRACE"
)

type EnvVars struct {
	values FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.values.Lookup(appNameVar, "Ticket Desk")
}

func (e EnvVars) GetEnv() string {
	return e.values.Lookup(envVar, "DEV")
}

// GetAPIBaseURL returns the server root; the /api prefix is appended by the gateway.
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.values.Lookup(apiURLVar, "http://localhost:8000"), "/")
}

func (e EnvVars) GetLogLevel() string {
	return e.values.Lookup(logLevelVar, "info")
}

// GetTraceRequests turns on the coloured one line per request trace.
func (e EnvVars) GetTraceRequests() bool {
	return e.values.Lookup(traceVar, "false") == "true"
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(values FileValues, envVar string, defaultValue int) int {
	raw := values.Lookup(envVar, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(values FileValues, envVar string, defaultValue time.Duration) time.Duration {
	raw := values.Lookup(envVar, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
