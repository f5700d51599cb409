// Package voice runs the listen, execute, reply loop. Speech recognition is
// behind Listener; replies go through Speaker.
package voice

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/models"
)

// Engine names accepted in settings tts.engine. Anything else, including the
// legacy pyttsx3 default, logs instead of speaking.
const (
	EngineLog     = "log"
	EngineConsole = "console"
	EngineSystem  = "system"
)

// Engine produces speech for one utterance.
type Engine interface {
	Speak(ctx context.Context, text string) error
}

type logEngine struct{ logger logger.Logger }

func (e logEngine) Speak(_ context.Context, text string) error {
	e.logger.Info("[TTS] would speak", map[string]interface{}{"text": text})
	return nil
}

type consoleEngine struct {
	mu  sync.Mutex
	out io.Writer
}

func (e *consoleEngine) Speak(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintf(e.out, "Don: %s\n", text)
	return err
}

// systemEngine hands text to the platform speech command.
type systemEngine struct {
	runner process.Runner
	goos   string
	rate   int
}

func (e systemEngine) Speak(ctx context.Context, text string) error {
	argv := SpeechCommand(e.goos, text, e.rate)
	if argv == nil {
		return fmt.Errorf("no speech command for %s", e.goos)
	}
	return e.runner.Start(ctx, argv[0], argv[1:]...)
}

// SpeechCommand returns the argv that speaks text on goos, or nil.
func SpeechCommand(goos, text string, rate int) []string {
	switch goos {
	case "windows":
		escaped := strings.ReplaceAll(text, "'", "''")
		script := "Add-Type -AssemblyName System.Speech; " +
			"$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; " +
			"$s.Speak('" + escaped + "')"
		return []string{"powershell", "-NoProfile", "-Command", script}
	case "darwin":
		if rate > 0 {
			return []string{"say", "-r", fmt.Sprint(rate), text}
		}
		return []string{"say", text}
	case "linux":
		if rate > 0 {
			return []string{"espeak", "-s", fmt.Sprint(rate), text}
		}
		return []string{"espeak", text}
	}
	return nil
}

// Speaker builds its engine on first use and is safe for concurrent use.
type Speaker struct {
	cfg    config.TTSConfig
	out    io.Writer
	runner process.Runner
	logger logger.Logger

	once   sync.Once
	engine Engine
}

func NewSpeaker(cfg config.TTSConfig, out io.Writer, runner process.Runner, l logger.Logger) *Speaker {
	return &Speaker{
		cfg:    cfg,
		out:    out,
		runner: runner,
		logger: logger.Component(l, "speaker"),
	}
}

// WithEngine fixes the engine, skipping lazy construction.
func (s *Speaker) WithEngine(e Engine) *Speaker {
	s.once.Do(func() { s.engine = e })
	return s
}

func (s *Speaker) build() {
	switch strings.ToLower(s.cfg.Engine) {
	case EngineConsole:
		if s.out != nil {
			s.engine = &consoleEngine{out: s.out}
			return
		}
	case EngineSystem:
		if s.runner != nil && SpeechCommand(runtime.GOOS, "", 0) != nil {
			s.engine = systemEngine{runner: s.runner, goos: runtime.GOOS, rate: s.cfg.Rate}
			return
		}
		s.logger.Warn("system speech unavailable, logging instead", nil)
	}
	s.engine = logEngine{logger: s.logger}
}

// Say speaks text. Failures are logged, never returned.
func (s *Speaker) Say(ctx context.Context, text string) {
	text = naturalize(text)
	if text == "" {
		return
	}
	s.once.Do(s.build)
	if err := s.engine.Speak(ctx, text); err != nil {
		s.logger.Warn("speak failed", map[string]interface{}{"error": err.Error()})
	}
}

// Notify announces a fired reminder.
func (s *Speaker) Notify(ctx context.Context, r models.Reminder) {
	s.Say(ctx, "Reminder: "+r.Title)
}

// naturalize trims the comma-separated parts of text so pauses are even.
func naturalize(text string) string {
	parts := strings.Split(text, ",")
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
