// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Settings is an immutable snapshot of the assistant configuration. Load a
// fresh one instead of mutating a shared instance.
type Settings struct {
	WhatsAppDesktopPaths []string            `mapstructure:"whatsappDesktopPaths" json:"whatsappDesktopPaths"`
	ChromeProfilePath    string              `mapstructure:"chromeProfilePath" json:"chromeProfilePath"`
	SimilarityThreshold  float64             `mapstructure:"similarityThreshold" json:"similarityThreshold"`
	Language             string              `mapstructure:"language" json:"language"`
	WakeWords            []string            `mapstructure:"wakeWords" json:"wakeWords"`
	TTS                  TTSConfig           `mapstructure:"tts" json:"tts"`
	AppPaths             map[string][]string `mapstructure:"appPaths" json:"appPaths"`

	Memory    MemoryConfig    `mapstructure:"memory" json:"memory"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" json:"scheduler"`
	Redis     RedisConfig     `mapstructure:"redis" json:"redis"`
	DevAPI    DevAPIConfig    `mapstructure:"devApi" json:"devApi"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
	TimeParse TimeParseConfig `mapstructure:"timeParse" json:"timeParse"`

	// Simulate is the legacy "simulate" key, used only when SIMULATION_MODE
	// is not set in the environment.
	Simulate *bool `mapstructure:"-" json:"simulate,omitempty"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-" json:"-"`
}

type TTSConfig struct {
	Engine string `mapstructure:"engine" json:"engine"`
	Voice  string `mapstructure:"voice" json:"voice"`
	Rate   int    `mapstructure:"rate" json:"rate"`
}

// MemoryConfig locates the JSON document and the relational log. Driver is
// "sqlite" (DBPath) or "postgres" (DSN).
type MemoryConfig struct {
	JSONPath string `mapstructure:"jsonPath" json:"jsonPath"`
	DBPath   string `mapstructure:"dbPath" json:"dbPath"`
	Driver   string `mapstructure:"driver" json:"driver"`
	DSN      string `mapstructure:"dsn" json:"dsn,omitempty"`
}

type SchedulerConfig struct {
	Interval time.Duration `mapstructure:"interval" json:"interval"`
}

// RedisConfig enables the contact cache when Address is set.
type RedisConfig struct {
	Address  string        `mapstructure:"address" json:"address"`
	Password string        `mapstructure:"password" json:"password,omitempty"`
	DB       int           `mapstructure:"db" json:"db"`
	TTL      time.Duration `mapstructure:"ttl" json:"ttl"`
}

type DevAPIConfig struct {
	Address string `mapstructure:"address" json:"address"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	Output string `mapstructure:"output" json:"output"`
}

type TimeParseConfig struct {
	Rollover string `mapstructure:"rollover" json:"rollover"`
}

// SimulationMode resolves SIMULATION_MODE, falling back to the legacy
// "simulate" key and then to true.
func (s *Settings) SimulationMode() bool {
	def := true
	if s.Simulate != nil {
		def = *s.Simulate
	}
	return EnvFlag(EnvSimulationMode, def)
}

// Confirmed resolves CONFIRM (default false).
func (s *Settings) Confirmed() bool {
	return ConfirmFlag()
}

// AppCandidates returns the configured executable candidates for key.
func (s *Settings) AppCandidates(key string) []string {
	if key == "whatsapp" && len(s.WhatsAppDesktopPaths) > 0 {
		return append(append([]string{}, s.WhatsAppDesktopPaths...), s.AppPaths[key]...)
	}
	return s.AppPaths[key]
}

func (s *Settings) String() string {
	return fmt.Sprintf("Settings{language=%s threshold=%.2f wakeWords=%v memory=%s/%s}",
		s.Language, s.SimilarityThreshold, s.WakeWords, s.Memory.Driver, s.Memory.DBPath)
}

// Document renders s in the settings file layout, with durations as strings
// so the result passes the settings schema.
func (s *Settings) Document() map[string]interface{} {
	return map[string]interface{}{
		"whatsappDesktopPaths": s.WhatsAppDesktopPaths,
		"chromeProfilePath":    s.ChromeProfilePath,
		"similarityThreshold":  s.SimilarityThreshold,
		"language":             s.Language,
		"wakeWords":            s.WakeWords,
		"tts":                  s.TTS,
		"appPaths":             s.AppPaths,
		"memory": map[string]interface{}{
			"jsonPath": s.Memory.JSONPath,
			"dbPath":   s.Memory.DBPath,
			"driver":   s.Memory.Driver,
		},
		"scheduler": map[string]interface{}{"interval": s.Scheduler.Interval.String()},
		"redis": map[string]interface{}{
			"address": s.Redis.Address,
			"db":      s.Redis.DB,
			"ttl":     s.Redis.TTL.String(),
		},
		"devApi":    s.DevAPI,
		"logging":   s.Logging,
		"timeParse": s.TimeParse,
	}
}
