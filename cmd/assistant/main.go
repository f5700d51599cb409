// cmd/assistant/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/devapi"
	"desk-assistant/internal/voice"
)

const joinTimeout = 5 * time.Second

var (
	settingsPath string
	devAPI       bool
	noVoice      bool
)

var rootCmd = &cobra.Command{
	Use:           "assistant",
	Short:         "Don - Roman Urdu/English desktop voice assistant",
	Long:          `Listens for spoken or typed commands, runs them on the desktop and fires scheduled reminders.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&settingsPath, "settings", config.DefaultSettingsPath, "Path to settings.json")
	rootCmd.Flags().BoolVar(&devAPI, "dev-api", false, "Serve the developer HTTP API (overrides devApi.enabled)")
	rootCmd.Flags().BoolVar(&noVoice, "no-voice", false, "Do not start the voice loop")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	s, err := config.Load(settingsPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	var outputs []string
	if s.Logging.Output != "" {
		if err := os.MkdirAll(filepath.Dir(s.Logging.Output), 0o755); err == nil {
			outputs = append(outputs, s.Logging.Output)
		}
	}
	zapLog := logger.New(s.Logging.Level, s.Logging.Format, outputs...)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting assistant", map[string]interface{}{
		"settings":   s.String(),
		"simulation": s.SimulationMode(),
		"env_file":   s.EnvFile,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := wire(ctx, s, log)
	if err != nil {
		return err
	}
	defer a.Close()

	watchSettings(a, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.scheduler.Start(gctx)
		<-gctx.Done()
		a.scheduler.Stop()
		return nil
	})

	if !noVoice {
		a.speaker.Say(ctx, voice.Greeting)
		loop := voice.NewLoop(voice.NewConsoleListener(os.Stdin), a.executor, a.speaker, log)
		g.Go(func() error { return loop.Run(gctx) })
	}

	if devAPI || s.DevAPI.Enabled {
		srv := devapi.NewServer(a.api, s.DevAPI.Address, log)
		g.Go(func() error { return srv.Start(gctx) })
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping", nil)
	case err := <-waitErr:
		if err != nil {
			log.Error("background task failed", map[string]interface{}{"error": err.Error()})
		}
		return err
	}

	cancel()
	select {
	case err := <-waitErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("background task ended with error", map[string]interface{}{"error": err.Error()})
		}
	case <-time.After(joinTimeout):
		log.Warn("background tasks did not stop in time", nil)
	}
	log.Info("assistant stopped", nil)
	return nil
}

// watchSettings re-reads the whole settings snapshot when
// config/settings.json changes and applies the simulation flag without a
// restart. Confirmation comes only from the CONFIRM env var, so it is not
// reloaded. Other keys take effect on the next start.
func watchSettings(a *app, log logger.Logger) {
	err := config.Watch(settingsPath, log, func(s *config.Settings) {
		a.gate.SetSimulation(s.SimulationMode())
	})
	if err != nil {
		log.Warn("settings watch disabled", map[string]interface{}{"error": err.Error()})
	}
}
