package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/database"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/observability"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/devapi"
	"desk-assistant/internal/executor"
	"desk-assistant/internal/firstrun"
	"desk-assistant/internal/handlers/appcontrol"
	"desk-assistant/internal/handlers/browser"
	"desk-assistant/internal/handlers/filecontrol"
	"desk-assistant/internal/handlers/optimize"
	"desk-assistant/internal/handlers/system"
	"desk-assistant/internal/handlers/whatsapp"
	"desk-assistant/internal/intent"
	"desk-assistant/internal/memory"
	"desk-assistant/internal/safety"
	"desk-assistant/internal/scheduler"
	"desk-assistant/internal/timeparse"
	"desk-assistant/internal/voice"
)

// app holds every wired component.
type app struct {
	settings  *config.Settings
	gate      *safety.Gate
	memLog    *memory.Log
	store     *memory.Store
	speaker   *voice.Speaker
	scheduler *scheduler.Scheduler
	executor  *executor.Executor
	api       *devapi.API
	obs       *observability.Observability
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func openMemory(ctx context.Context, s *config.Settings, log logger.Logger) (*memory.Log, error) {
	var db *database.SQLClient
	err := retryWithBackoff(func() error {
		var err error
		db, err = database.Open(s.Memory)
		if err != nil {
			return err
		}
		return db.Ping(ctx)
	}, 5, 500*time.Millisecond, log, "memory database connection")
	if err != nil {
		return nil, err
	}

	cache := database.NewRedis(s.Redis)
	if cache != nil {
		if err := retryWithBackoff(func() error { return cache.Ping(ctx) }, 3, 200*time.Millisecond, log, "redis connection"); err != nil {
			log.Warn("contact cache disabled", map[string]interface{}{"error": err.Error()})
			_ = cache.Close()
			cache = nil
		}
	}

	mlog := memory.NewLog(db, cache, s.Redis.TTL, log)
	if err := mlog.EnsureSchema(ctx); err != nil {
		_ = mlog.Close()
		return nil, err
	}
	return mlog, nil
}

func wire(ctx context.Context, s *config.Settings, log logger.Logger) (*app, error) {
	boot, err := firstrun.Ensure(ctx, ".", s, nil, log)
	if err != nil {
		return nil, fmt.Errorf("first run setup: %w", err)
	}

	obs := observability.New("desk-assistant")
	mlog, err := openMemory(ctx, s, log)
	if err != nil {
		obs.Shutdown()
		return nil, err
	}

	gate := safety.FromSettings(s, log)
	runner := process.NewExecRunner(log)
	table := process.NewSystemTable(log)
	store := memory.NewStore(s.Memory.JSONPath, mlog, log)
	speaker := voice.NewSpeaker(s.TTS, os.Stdout, runner, log)

	browserH := browser.NewHandler(browser.LoadConfig(s), gate, runner, log)
	waH := whatsapp.NewHandler(whatsapp.LoadConfig(s), gate, runner, browserH, store, speaker, log)
	appsH := appcontrol.NewHandler(appcontrol.LoadConfig(s), boot.Registry, gate, runner, table, log)
	sysH := system.NewHandler(system.LoadConfig(), gate, runner, log)
	filesH := filecontrol.NewHandler(filecontrol.LoadConfig("."), gate, log)
	optH := optimize.NewHandler(optimize.LoadConfig(), gate, log)

	sched := scheduler.New(mlog,
		timeparse.New(timeparse.ParsePolicy(s.TimeParse.Rollover)),
		s.Scheduler.Interval, log,
		scheduler.WithNotifier(speaker),
		scheduler.WithObservability(obs),
	)

	parser := intent.NewParser(log, intent.WithWakeWords(s.WakeWords))
	exec := executor.New(parser, executor.Deps{
		WhatsApp:  waH,
		Apps:      appsH,
		Browser:   browserH,
		System:    sysH,
		Files:     filesH,
		Optimizer: optH,
		Scheduler: sched,
		History:   mlog,
	}, log)

	api := devapi.New(devapi.Deps{
		Executor:  exec,
		Apps:      appsH,
		WhatsApp:  waH,
		System:    sysH,
		Optimizer: optH,
		Scheduler: sched,
		Scans:     mlog,
	}, log)

	return &app{
		settings:  s,
		gate:      gate,
		memLog:    mlog,
		store:     store,
		speaker:   speaker,
		scheduler: sched,
		executor:  exec,
		api:       api,
		obs:       obs,
	}, nil
}

func (a *app) Close() {
	_ = a.memLog.Close()
	a.obs.Shutdown()
}
