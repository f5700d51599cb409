package devapi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/executor"
	"desk-assistant/internal/handlers/optimize"
	"desk-assistant/internal/handlers/system"
	"desk-assistant/internal/models"
)

type fakeApps struct {
	avail      map[string]bool
	opened     string
	closeCount int
	err        error
}

func (f *fakeApps) Scan() map[string]bool { return f.avail }

func (f *fakeApps) Open(_ context.Context, name string, _ ...string) (string, error) {
	f.opened = name
	return "/apps/" + name, f.err
}

func (f *fakeApps) Close(_ context.Context, _ string) (int, error) {
	return f.closeCount, f.err
}

type fakeWhatsApp struct {
	preferWeb bool
	err       error
}

func (f *fakeWhatsApp) SendText(_ context.Context, _, _ string, preferWeb bool) (models.Channel, error) {
	f.preferWeb = preferWeb
	return models.ChannelDesktop, f.err
}

type fakeSystem struct {
	done []string
	err  error
}

func (f *fakeSystem) Supported(action string) bool {
	return action == system.ActionShutdown || action == system.ActionRestart
}

func (f *fakeSystem) Do(_ context.Context, action string) error {
	f.done = append(f.done, action)
	return f.err
}

func (f *fakeSystem) Status(context.Context) system.Status {
	return system.Status{OS: "linux", Hostname: "box", CPUPercent: 12.5, RAMPercent: 40, DiskPercent: 70}
}

type fakeOptimizer struct{ err error }

func (f *fakeOptimizer) Run(context.Context) (optimize.Report, error) {
	return optimize.Report{Removed: 3, Freed: 2048}, f.err
}

type fakeScheduler struct {
	pending []models.Reminder
	err     error
}

func (f *fakeScheduler) ScheduleFromText(_ context.Context, _, title string) (models.Reminder, error) {
	if f.err != nil {
		return models.Reminder{}, f.err
	}
	return models.Reminder{ID: 4, WhenTS: 1700000000, Title: title, Status: models.ReminderPending}, nil
}

func (f *fakeScheduler) Pending(context.Context) ([]models.Reminder, error) {
	return f.pending, f.err
}

type fakeScans struct{ recorded []interface{} }

func (f *fakeScans) RecordScan(_ context.Context, data interface{}) error {
	f.recorded = append(f.recorded, data)
	return nil
}

type fixture struct {
	api   *API
	apps  *fakeApps
	wa    *fakeWhatsApp
	sys   *fakeSystem
	opt   *fakeOptimizer
	sched *fakeScheduler
	scans *fakeScans
}

func newFixture() *fixture {
	f := &fixture{
		apps:  &fakeApps{avail: map[string]bool{"chrome": true, "edge": false}},
		wa:    &fakeWhatsApp{},
		sys:   &fakeSystem{},
		opt:   &fakeOptimizer{},
		sched: &fakeScheduler{},
		scans: &fakeScans{},
	}
	log := logger.NewNoOpLogger()
	f.api = New(Deps{
		Executor:  executor.New(nil, executor.Deps{}, log),
		Apps:      f.apps,
		WhatsApp:  f.wa,
		System:    f.sys,
		Optimizer: f.opt,
		Scheduler: f.sched,
		Scans:     f.scans,
	}, log)
	return f
}

func TestScanSystemApps(t *testing.T) {
	f := newFixture()
	env := f.api.ScanSystemApps(context.Background())

	assert.True(t, env.OK)
	assert.Equal(t, MethodLocal, env.Method)
	assert.Equal(t, "Scan complete", env.Detail)
	assert.Equal(t, f.apps.avail, env.Meta["apps"])
	require.Len(t, f.scans.recorded, 1)
}

func TestParseIntent(t *testing.T) {
	f := newFixture()
	env := f.api.ParseIntent("open chrome")

	assert.True(t, env.OK)
	assert.Equal(t, MethodNLP, env.Method)
	rec, ok := env.Meta["intent"].(models.IntentRecord)
	require.True(t, ok)
	assert.Equal(t, models.IntentOpenApp, rec.Intent)
}

func TestSendWhatsAppMessage(t *testing.T) {
	f := newFixture()

	env := f.api.SendWhatsAppMessage(context.Background(), "ali", "hi", models.ChannelWeb)
	assert.True(t, env.OK)
	assert.Equal(t, MethodWeb, env.Method)
	assert.Equal(t, "Message sent", env.Detail)
	assert.Equal(t, "ali", env.Meta["contact"])
	assert.True(t, f.wa.preferWeb)

	f.wa.err = apperrors.NewSafetyRefusedError("send WhatsApp message preview: hi")
	env = f.api.SendWhatsAppMessage(context.Background(), "ali", "hi", models.ChannelAuto)
	assert.False(t, env.OK)
	assert.Equal(t, MethodDesktop, env.Method)
	assert.Equal(t, "Failed to send", env.Detail)
}

func TestOpenAndCloseApp(t *testing.T) {
	f := newFixture()

	env := f.api.OpenApp(context.Background(), "chrome")
	assert.True(t, env.OK)
	assert.Equal(t, "App opened", env.Detail)
	assert.Equal(t, "chrome", f.apps.opened)

	env = f.api.CloseApp(context.Background(), "chrome.exe")
	assert.False(t, env.OK)
	assert.Equal(t, "No process closed", env.Detail)
	assert.Equal(t, "chrome.exe", env.Meta["process"])

	f.apps.closeCount = 2
	env = f.api.CloseApp(context.Background(), "chrome.exe")
	assert.True(t, env.OK)
	assert.Equal(t, "Closed 2 processes", env.Detail)

	f.apps.err = errors.New("boom")
	env = f.api.OpenApp(context.Background(), "chrome")
	assert.False(t, env.OK)
	assert.Equal(t, "Failed to open", env.Detail)
}

func TestSystemStatus(t *testing.T) {
	env := newFixture().api.SystemStatus(context.Background())
	assert.True(t, env.OK)
	assert.Equal(t, "System usage fetched", env.Detail)
	assert.Equal(t, 12.5, env.Meta["cpu_percent"])
	assert.Equal(t, "box", env.Meta["hostname"])
}

func TestSystemAction(t *testing.T) {
	f := newFixture()

	env := f.api.SystemAction(context.Background(), "Shutdown")
	assert.True(t, env.OK)
	assert.Equal(t, "Shutdown initiated", env.Detail)
	assert.Equal(t, []string{"shutdown"}, f.sys.done)

	f.sys.err = apperrors.NewSafetyRefusedError("restart system")
	env = f.api.SystemAction(context.Background(), "restart")
	assert.False(t, env.OK)
	assert.Equal(t, "Restart blocked", env.Detail)

	env = f.api.SystemAction(context.Background(), "dance")
	assert.False(t, env.OK)
	assert.Equal(t, "Unsupported action", env.Detail)
	assert.Equal(t, "dance", env.Meta["action"])

	env = f.api.SystemAction(context.Background(), "")
	assert.Equal(t, "Unsupported action", env.Detail)
}

func TestOptimizeSystem(t *testing.T) {
	f := newFixture()
	env := f.api.OptimizeSystem(context.Background())
	assert.True(t, env.OK)
	assert.Equal(t, "Optimization completed", env.Detail)
	assert.Equal(t, int64(2048), env.Meta["freed_bytes"])

	f.opt.err = apperrors.NewSafetyRefusedError("optimize system cleanup")
	env = f.api.OptimizeSystem(context.Background())
	assert.False(t, env.OK)
	assert.Equal(t, "Optimization blocked or simulated", env.Detail)
	assert.Empty(t, env.Meta)
}

func TestExplainAndFixError(t *testing.T) {
	api := newFixture().api

	env := api.ExplainError("open /x: permission denied")
	assert.True(t, env.OK)
	assert.Equal(t, MethodAI, env.Method)
	assert.Equal(t, "open /x: permission denied", env.Meta["analysis"])
	assert.NotEmpty(t, env.Meta["hint"])

	env = api.ExplainError("something odd")
	assert.NotContains(t, env.Meta, "hint")

	env = api.FixErrorSafely("anything")
	assert.False(t, env.OK)
	assert.Equal(t, "No automatic fix applied; guidance available", env.Detail)
	assert.Equal(t, fixHint, env.Meta["hint"])
}

func TestScheduleTask(t *testing.T) {
	f := newFixture()
	env := f.api.ScheduleTask(context.Background(), "kal subah 8 baje", "Gym")
	assert.True(t, env.OK)
	assert.Equal(t, "Scheduled", env.Detail)
	assert.Equal(t, "Gym", env.Meta["title"])
	assert.Equal(t, int64(4), env.Meta["id"])

	f.sched.err = apperrors.NewTimeParseFailedError("whenever")
	env = f.api.ScheduleTask(context.Background(), "whenever", "Gym")
	assert.False(t, env.OK)
	assert.Equal(t, "Failed to schedule", env.Detail)
	assert.Equal(t, map[string]interface{}{"title": "Gym"}, env.Meta)
}

func TestNilCollaborators(t *testing.T) {
	api := New(Deps{}, logger.NewNoOpLogger())
	ctx := context.Background()

	for _, env := range []models.Envelope{
		api.ScanSystemApps(ctx),
		api.ParseIntent("x"),
		api.OpenApp(ctx, "chrome"),
		api.CloseApp(ctx, "chrome"),
		api.SystemStatus(ctx),
		api.SystemAction(ctx, "shutdown"),
		api.OptimizeSystem(ctx),
		api.ScheduleTask(ctx, "x", "y"),
		api.SendWhatsAppMessage(ctx, "ali", "hi", ""),
	} {
		assert.False(t, env.OK)
		assert.NotNil(t, env.Meta)
	}
	res := api.Execute(ctx, "open chrome")
	assert.False(t, res.OK)
	rows, err := api.Reminders(ctx)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
