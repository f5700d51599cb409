package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel)
	dir := t.TempDir()

	s, err := Load(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	assert.Equal(t, 0.82, s.SimilarityThreshold)
	assert.Equal(t, "roman-urdu-english", s.Language)
	assert.Equal(t, []string{"hey don", "don"}, s.WakeWords)
	assert.Equal(t, TTSConfig{Engine: "pyttsx3", Voice: "default", Rate: 180}, s.TTS)
	assert.Len(t, s.WhatsAppDesktopPaths, 3)
	assert.Equal(t, "sqlite", s.Memory.Driver)
	assert.Equal(t, time.Second, s.Scheduler.Interval)
	assert.Equal(t, 10*time.Minute, s.Redis.TTL)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "inferred_today", s.TimeParse.Rollover)
	assert.NotEmpty(t, s.AppPaths["chrome"])
	assert.Nil(t, s.Simulate)
}

func TestLoad_LayeringAndEnv(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.json"), `{
		"language": "en",
		"similarityThreshold": 0.7,
		"tts": {"rate": 150},
		"scheduler": {"interval": "250ms"},
		"somethingElse": 42
	}`)
	writeFile(t, filepath.Join(dir, "config", "settings.json"), `{
		"language": "ur",
		"redis": {"address": "localhost:6379", "ttl": "2m"}
	}`)

	s, err := Load(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, "ur", s.Language)
	assert.Equal(t, 0.7, s.SimilarityThreshold)
	assert.Equal(t, 150, s.TTS.Rate)
	assert.Equal(t, "pyttsx3", s.TTS.Engine)
	assert.Equal(t, 250*time.Millisecond, s.Scheduler.Interval)
	assert.Equal(t, "localhost:6379", s.Redis.Address)
	assert.Equal(t, 2*time.Minute, s.Redis.TTL)

	t.Setenv(EnvSimilarityThreshold, "0.9")
	t.Setenv(EnvLogLevel, "DEBUG")
	s, err = Load(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, 0.9, s.SimilarityThreshold)
	assert.Equal(t, "debug", s.Logging.Level)

	t.Setenv(EnvSimilarityThreshold, "high")
	s, err = Load(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, 0.7, s.SimilarityThreshold)
}

func TestLoad_LegacyAliases(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel, EnvSimulationMode)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.json"), `{
		"wake_word": "hey don",
		"tts_provider": "edge-tts",
		"simulate": false
	}`)

	s, err := Load(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"hey don"}, s.WakeWords)
	assert.Equal(t, "edge-tts", s.TTS.Engine)
	require.NotNil(t, s.Simulate)
	assert.False(t, s.SimulationMode())

	t.Setenv(EnvSimulationMode, "yes")
	assert.True(t, s.SimulationMode())
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel)
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"language": `},
		{"threshold out of range", `{"similarityThreshold": 3}`},
		{"wrong type", `{"wakeWords": "don"}`},
		{"bad driver", `{"memory": {"driver": "mysql"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "settings.json"), tt.content)

			_, err := Load(filepath.Join(dir, "settings.json"))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeSettingsInvalid, apperrors.CodeOf(err))
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("DESK_TEST_HOME", "/home/don")
	clearEnv(t, "DESK_TEST_MISSING")

	assert.Equal(t, filepath.FromSlash("/home/don/WhatsApp/WhatsApp.exe"), ExpandPath("%DESK_TEST_HOME%/WhatsApp/WhatsApp.exe"))
	assert.Equal(t, filepath.FromSlash("/home/don/bin"), ExpandPath("$DESK_TEST_HOME/bin"))
	assert.Equal(t, filepath.FromSlash("%DESK_TEST_MISSING%/x"), ExpandPath("%DESK_TEST_MISSING%/x"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, []string{filepath.FromSlash("/home/don")}, ExpandPaths([]string{"", "%DESK_TEST_HOME%"}))
}

func TestEnvFlags(t *testing.T) {
	clearEnv(t, "DESK_FLAG", EnvConfirm)
	assert.True(t, EnvFlag("DESK_FLAG", true))
	assert.False(t, ConfirmFlag())

	for _, v := range []string{"1", "true", "T", "yes", " Y "} {
		t.Setenv("DESK_FLAG", v)
		assert.True(t, EnvFlag("DESK_FLAG", false), v)
	}
	t.Setenv("DESK_FLAG", "ok")
	assert.False(t, EnvFlag("DESK_FLAG", true))

	t.Setenv(EnvConfirm, "OK")
	assert.True(t, ConfirmFlag())
	assert.Equal(t, "fallback", EnvText("DESK_NOT_SET_ANYWHERE", "fallback"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel)
	dir := t.TempDir()
	root := filepath.Join(dir, "settings.json")
	writeFile(t, OverlayPath(root), `{"language": "en"}`)

	changes := make(chan *Settings, 4)
	require.NoError(t, Watch(root, logger.NewNoOpLogger(), func(s *Settings) {
		select {
		case changes <- s:
		default:
		}
	}))

	writeFile(t, OverlayPath(root), `{"language": "ur"}`)

	select {
	case s := <-changes:
		assert.Equal(t, "ur", s.Language)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestReload_KeepsRootLayer(t *testing.T) {
	clearEnv(t, EnvSimilarityThreshold, EnvLogLevel, EnvSimulationMode)
	dir := t.TempDir()
	root := filepath.Join(dir, "settings.json")
	writeFile(t, root, `{"simulate": false, "similarityThreshold": 0.7}`)
	writeFile(t, OverlayPath(root), `{"language": "en"}`)

	startup, err := Load(root)
	require.NoError(t, err)
	require.False(t, startup.SimulationMode())

	var reloaded *Settings
	reloader(root, logger.NewNoOpLogger(), func(s *Settings) { reloaded = s })(
		fsnotify.Event{Name: OverlayPath(root), Op: fsnotify.Write})

	require.NotNil(t, reloaded)
	assert.Equal(t, startup.SimulationMode(), reloaded.SimulationMode())
	assert.Equal(t, startup.SimilarityThreshold, reloaded.SimilarityThreshold)
	assert.Equal(t, "en", reloaded.Language)
}

func TestReload_IgnoresNonWriteEvents(t *testing.T) {
	root := filepath.Join(t.TempDir(), "settings.json")
	called := false
	reloader(root, logger.NewNoOpLogger(), func(*Settings) { called = true })(
		fsnotify.Event{Name: OverlayPath(root), Op: fsnotify.Chmod})
	assert.False(t, called)
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "nope.json"), logger.NewNoOpLogger(), func(*Settings) {})
	assert.Error(t, err)
}
