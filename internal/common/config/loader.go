// internal/common/config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/validation"
)

// DefaultSettingsPath is the root settings file; config/settings.json next
// to it overrides it key by key.
const DefaultSettingsPath = "settings.json"

var defaultWakeWords = []string{"hey don", "don"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("whatsappDesktopPaths", []string{
		"%LOCALAPPDATA%/WhatsApp/WhatsApp.exe",
		"C:/Program Files/WhatsApp/WhatsApp.exe",
		"C:/Program Files (x86)/WhatsApp/WhatsApp.exe",
	})
	v.SetDefault("chromeProfilePath", "%LOCALAPPDATA%/Google/Chrome/User Data/Default")
	v.SetDefault("similarityThreshold", 0.82)
	v.SetDefault("language", "roman-urdu-english")
	v.SetDefault("wakeWords", defaultWakeWords)
	v.SetDefault("tts.engine", "pyttsx3")
	v.SetDefault("tts.voice", "default")
	v.SetDefault("tts.rate", 180)
	v.SetDefault("appPaths", map[string]interface{}{
		"chrome": []string{
			"C:/Program Files/Google/Chrome/Application/chrome.exe",
			"C:/Program Files (x86)/Google/Chrome/Application/chrome.exe",
			"%LOCALAPPDATA%/Google/Chrome/Application/chrome.exe",
		},
		"edge": []string{
			"C:/Program Files/Microsoft/Edge/Application/msedge.exe",
			"C:/Program Files (x86)/Microsoft/Edge/Application/msedge.exe",
		},
		"notepad": []string{"C:/Windows/System32/notepad.exe"},
	})

	v.SetDefault("memory.jsonPath", filepath.Join("memory", "memory.json"))
	v.SetDefault("memory.dbPath", filepath.Join("memory", "memory.db"))
	v.SetDefault("memory.driver", "sqlite")
	v.SetDefault("scheduler.interval", time.Second)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("devApi.address", "127.0.0.1:8765")
	v.SetDefault("devApi.enabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", filepath.Join("logs", "assistant.log"))
	v.SetDefault("timeParse.rollover", "inferred_today")
}

// Defaults returns the settings used when no file is present.
func Defaults() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	_ = v.Unmarshal(&s)
	finalize(&s)
	return &s
}

// Load builds a Settings snapshot: defaults, then path, then
// config/settings.json beside it, then environment overrides. Missing files
// are skipped; a file that is not valid JSON or fails the schema is
// SETTINGS_INVALID.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultSettingsPath
	}
	envFile := loadEnvFile()

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)

	var simulate *bool
	legacy := map[string]interface{}{}
	sources := []string{path, OverlayPath(path)}
	for _, src := range sources {
		doc, err := readDocument(src)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		if err := v.MergeConfigMap(doc); err != nil {
			return nil, apperrors.NewSettingsInvalidError(fmt.Sprintf("%s: %v", src, err))
		}
		for k, val := range doc {
			legacy[k] = val
		}
		if b, ok := doc["simulate"].(bool); ok {
			simulate = &b
		}
	}
	applyAliases(v, legacy)

	applyEnvOverrides(v)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, apperrors.NewSettingsInvalidError(fmt.Sprintf("unmarshal: %v", err))
	}
	s.Simulate = simulate
	s.EnvFile = envFile
	finalize(&s)
	return &s, nil
}

// readDocument returns nil, nil when the file does not exist.
func readDocument(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSettingsInvalidError(fmt.Sprintf("%s: %v", path, err))
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewSettingsInvalidError(fmt.Sprintf("%s: %v", path, err))
	}

	res, err := validation.ValidateDocument(settingsSchema, doc)
	if err != nil {
		return nil, apperrors.NewSettingsInvalidError(err.Error())
	}
	if !res.Valid {
		return nil, apperrors.NewSettingsInvalidError(fmt.Sprintf("%s: %s", path, strings.Join(res.GetErrorMessages(), "; ")))
	}
	return doc, nil
}

// applyAliases maps the legacy keys of older settings files. doc holds the
// top-level keys of every file read, later files winning.
func applyAliases(v *viper.Viper, doc map[string]interface{}) {
	if _, has := doc["wakeWords"]; !has {
		switch w := doc["wake_word"].(type) {
		case string:
			v.Set("wakeWords", []string{w})
		case []interface{}:
			words := make([]string, 0, len(w))
			for _, item := range w {
				if s, ok := item.(string); ok {
					words = append(words, s)
				}
			}
			v.Set("wakeWords", words)
		}
	}
	if engine, ok := doc["tts_provider"].(string); ok {
		v.Set("tts.engine", engine)
	}
}

func applyEnvOverrides(v *viper.Viper) {
	if raw, ok := os.LookupEnv(EnvSimilarityThreshold); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			v.Set("similarityThreshold", f)
		}
	}
	if lvl, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(lvl) != "" {
		v.Set("logging.level", strings.ToLower(strings.TrimSpace(lvl)))
	}
}

func finalize(s *Settings) {
	if len(s.WakeWords) == 0 {
		s.WakeWords = append([]string{}, defaultWakeWords...)
	}
	s.WhatsAppDesktopPaths = ExpandPaths(s.WhatsAppDesktopPaths)
	s.ChromeProfilePath = ExpandPath(s.ChromeProfilePath)
	for k, paths := range s.AppPaths {
		s.AppPaths[k] = ExpandPaths(paths)
	}
	if s.Scheduler.Interval <= 0 {
		s.Scheduler.Interval = time.Second
	}
}

var percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// ExpandPath resolves %VAR% and $VAR references and converts slashes to the
// host separator. Unset %VAR% references are left as written.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = percentVar.ReplaceAllStringFunc(p, func(m string) string {
		if val, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return val
		}
		return m
	})
	if strings.Contains(p, "$") {
		p = os.ExpandEnv(p)
	}
	return filepath.FromSlash(p)
}

// ExpandPaths applies ExpandPath to each entry, dropping empty results.
func ExpandPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if e := ExpandPath(p); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// loadEnvFile loads the first .env found in cwd, its parents, or the project
// root, and returns its path.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// OverlayPath is the config/settings.json layered over the root file.
func OverlayPath(root string) string {
	return filepath.Join(filepath.Dir(root), "config", "settings.json")
}

// Watch follows the overlay file of root and, on every change, rebuilds the
// full snapshot from root with Load before handing it to onChange. Reloads
// that fail are logged and skipped. The watcher lives for the rest of the
// process.
func Watch(root string, log logger.Logger, onChange func(*Settings)) error {
	if root == "" {
		root = DefaultSettingsPath
	}
	log = logger.Component(log, "config")
	overlay := OverlayPath(root)

	v := viper.New()
	v.SetConfigFile(overlay)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch %s: %w", overlay, err)
	}

	v.OnConfigChange(reloader(root, log, onChange))
	v.WatchConfig()
	return nil
}

func reloader(root string, log logger.Logger, onChange func(*Settings)) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s, err := Load(root)
		if err != nil {
			log.Warn("settings reload failed", map[string]interface{}{"file": e.Name, "error": err.Error()})
			return
		}
		log.Info("settings reloaded", map[string]interface{}{"file": e.Name})
		onChange(s)
	}
}
