// internal/common/config/env.go
package config

import (
	"os"
	"strings"
)

const (
	EnvSimulationMode      = "SIMULATION_MODE"
	EnvConfirm             = "CONFIRM"
	EnvLogLevel            = "LOG_LEVEL"
	EnvSimilarityThreshold = "SIMILARITY_THRESHOLD"
)

var truthy = map[string]bool{"1": true, "true": true, "t": true, "yes": true, "y": true}

// EnvFlag reads a boolean environment flag. Unset returns def; any value
// outside {1,true,t,yes,y} is false.
func EnvFlag(name string, def bool) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	return truthy[strings.ToLower(strings.TrimSpace(val))]
}

// ConfirmFlag reads CONFIRM, which additionally accepts "ok".
func ConfirmFlag() bool {
	val, ok := os.LookupEnv(EnvConfirm)
	if !ok {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(val))
	return truthy[v] || v == "ok"
}

// EnvText returns the variable or def when unset.
func EnvText(name, def string) string {
	if val, ok := os.LookupEnv(name); ok {
		return val
	}
	return def
}
