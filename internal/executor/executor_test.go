package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/handlers/optimize"
	"desk-assistant/internal/models"
)

type fakeWhatsApp struct {
	contact, message string
	preferWeb        bool
	err              error
}

func (f *fakeWhatsApp) SendText(_ context.Context, contact, message string, preferWeb bool) (models.Channel, error) {
	f.contact, f.message, f.preferWeb = contact, message, preferWeb
	if preferWeb {
		return models.ChannelWeb, f.err
	}
	return models.ChannelDesktop, f.err
}

type fakeApps struct {
	opened, closed string
	closeCount     int
	err            error
}

func (f *fakeApps) Open(_ context.Context, name string, _ ...string) (string, error) {
	f.opened = name
	return "/apps/" + name + ".exe", f.err
}

func (f *fakeApps) Close(_ context.Context, name string) (int, error) {
	f.closed = name
	return f.closeCount, f.err
}

type fakeBrowser struct{ google, youtube string }

func (f *fakeBrowser) GoogleSearch(_ context.Context, q string, _ bool) error {
	f.google = q
	return nil
}

func (f *fakeBrowser) YouTubeSearch(_ context.Context, q string, _ bool) error {
	f.youtube = q
	return nil
}

type fakeSystem struct {
	actions []string
	shots   []string
	err     error
}

func (f *fakeSystem) Do(_ context.Context, action string) error {
	f.actions = append(f.actions, action)
	return f.err
}

func (f *fakeSystem) Screenshot(_ context.Context, path string) error {
	f.shots = append(f.shots, path)
	return nil
}

type fakeFiles struct{ op, target, arg string }

func (f *fakeFiles) Do(_ context.Context, op, target, arg string) (map[string]interface{}, error) {
	f.op, f.target, f.arg = op, target, arg
	return map[string]interface{}{"op": op, "path": target}, nil
}

type fakeOptimizer struct{ err error }

func (f *fakeOptimizer) Run(context.Context) (optimize.Report, error) {
	return optimize.Report{Removed: 2, Freed: 10}, f.err
}

type fakeScheduler struct {
	text, title string
	err         error
}

func (f *fakeScheduler) ScheduleFromText(_ context.Context, text, title string) (models.Reminder, error) {
	f.text, f.title = text, title
	if f.err != nil {
		return models.Reminder{}, f.err
	}
	return models.Reminder{ID: 7, WhenTS: float64(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC).Unix()), Title: title}, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []map[string]interface{}
	err     error
}

func (f *fakeHistory) AppendHistory(_ context.Context, kind string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := payload.(map[string]interface{})
	p["kind"] = kind
	f.entries = append(f.entries, p)
	return f.err
}

type fixture struct {
	exec      *Executor
	whatsapp  *fakeWhatsApp
	apps      *fakeApps
	browser   *fakeBrowser
	system    *fakeSystem
	files     *fakeFiles
	optimizer *fakeOptimizer
	scheduler *fakeScheduler
	history   *fakeHistory
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		whatsapp:  &fakeWhatsApp{},
		apps:      &fakeApps{closeCount: 1},
		browser:   &fakeBrowser{},
		system:    &fakeSystem{},
		files:     &fakeFiles{},
		optimizer: &fakeOptimizer{},
		scheduler: &fakeScheduler{},
		history:   &fakeHistory{},
	}
	f.exec = New(nil, Deps{
		WhatsApp:  f.whatsapp,
		Apps:      f.apps,
		Browser:   f.browser,
		System:    f.system,
		Files:     f.files,
		Optimizer: f.optimizer,
		Scheduler: f.scheduler,
		History:   f.history,
	}, logger.NewTestLogger(t))
	return f
}

func TestExecute_WhatsAppScenario(t *testing.T) {
	f := newFixture(t)
	res := f.exec.Execute(context.Background(), `whatsapp pe Ali ko msg karo "hello"`)

	assert.True(t, res.OK)
	assert.Equal(t, models.HandlerWhatsApp, res.Handler)
	assert.Equal(t, "ali", f.whatsapp.contact)
	assert.Equal(t, "hello", f.whatsapp.message)
	assert.False(t, f.whatsapp.preferWeb)
	assert.Equal(t, "desktop", res.Meta["channel"])
}

func TestExecute_WhatsAppRefusalIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.whatsapp.err = apperrors.NewSafetyRefusedError("send WhatsApp message preview: hello")
	res := f.exec.Execute(context.Background(), `whatsapp web pe Ali ko msg karo "hello"`)

	assert.False(t, res.OK)
	assert.Equal(t, models.HandlerWhatsApp, res.Handler)
	assert.Equal(t, string(apperrors.ErrCodeSafetyRefused), res.Meta["code"])
	assert.True(t, f.whatsapp.preferWeb)
}

func TestExecute_Routing(t *testing.T) {
	tests := []struct {
		input   string
		handler string
		ok      bool
	}{
		{"chrome kholo", models.HandlerOpenApp, true},
		{"spotify close kar", models.HandlerCloseApp, true},
		{"google pe weather search karo", models.HandlerSearchWeb, true},
		{"shutdown kr do mera pc", "shutdown", true},
		{"computer restart karo", "restart", true},
		{"laptop ko sleep pe dalo", "sleep", true},
		{"screen lock karo", "lock", true},
		{"system optimize karo", models.HandlerOptimize, true},
		{"ek screenshot lo", models.HandlerScreenshot, true},
		{"ye error kya hai", models.HandlerErrorAnalysis, true},
		{"kal subah 8 baje yaad rakhna", models.HandlerSchedule, true},
		{`delete "notes.txt"`, models.HandlerFileAction, true},
		{"aaj mausam kaisa hai", models.HandlerUnknown, false},
		{"", models.HandlerUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := newFixture(t).exec.Execute(context.Background(), tt.input)
			assert.Equal(t, tt.handler, res.Handler)
			assert.Equal(t, tt.ok, res.OK)
		})
	}
}

func TestExecute_CollaboratorArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.exec.Execute(ctx, "chrome kholo")
	assert.Equal(t, "chrome", f.apps.opened)

	f.exec.Execute(ctx, "youtube pe coke studio search karo")
	assert.Equal(t, "youtube pe coke studio search karo", f.browser.youtube)

	res := f.exec.Execute(ctx, "ek screenshot lo")
	assert.Equal(t, []string{ScreenshotPath}, f.system.shots)
	assert.Equal(t, ScreenshotPath, res.Meta["path"])

	res = f.exec.Execute(ctx, "kal subah 8 baje yaad rakhna")
	assert.Equal(t, "kal subah 8 baje yaad rakhna", f.scheduler.text)
	assert.Equal(t, ReminderTitle, f.scheduler.title)
	assert.Equal(t, int64(7), res.Meta["id"])

	f.exec.Execute(ctx, `move "a.txt" to "archive/a.txt"`)
	assert.Equal(t, "move", f.files.op)
	assert.Equal(t, "a.txt", f.files.target)
	assert.Equal(t, "archive/a.txt", f.files.arg)
}

func TestExecute_CloseAppNothingClosed(t *testing.T) {
	f := newFixture(t)
	f.apps.closeCount = 0
	res := f.exec.Execute(context.Background(), "spotify close kar")
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Meta["closed"])
}

func TestExecute_CollaboratorFailures(t *testing.T) {
	f := newFixture(t)
	f.system.err = apperrors.NewSafetyRefusedError("shutdown")
	f.scheduler.err = apperrors.NewTimeParseFailedError("yaad rakhna")

	res := f.exec.Execute(context.Background(), "shutdown kr do mera pc")
	assert.False(t, res.OK)
	assert.Equal(t, "shutdown", res.Handler)
	assert.Equal(t, "Action blocked by safety gate", res.Error)

	res = f.exec.Execute(context.Background(), "remind me")
	assert.False(t, res.OK)
	assert.Equal(t, models.HandlerSchedule, res.Handler)
	assert.Equal(t, string(apperrors.ErrCodeTimeParseFailed), res.Meta["code"])
}

func TestExecute_FileActionNeedsQuotedPath(t *testing.T) {
	res := newFixture(t).exec.Execute(context.Background(), "delete everything")
	assert.False(t, res.OK)
	assert.Equal(t, models.HandlerFileAction, res.Handler)
	assert.Equal(t, string(apperrors.ErrCodeInvalidArgument), res.Meta["code"])
}

func TestExecute_MissingCollaborator(t *testing.T) {
	exec := New(nil, Deps{}, logger.NewNoOpLogger())
	res := exec.Execute(context.Background(), "chrome kholo")
	assert.False(t, res.OK)
	assert.Equal(t, models.HandlerOpenApp, res.Handler)
	assert.Equal(t, string(apperrors.ErrCodeCollaboratorUnavailable), res.Meta["code"])
}

func TestExecute_PanicBecomesErrorResult(t *testing.T) {
	f := newFixture(t)
	f.exec.RegisterHandler(models.IntentOpenApp, func(context.Context, models.IntentRecord) models.Result {
		var m map[string]int
		m["boom"]++
		return models.Result{}
	})

	var res models.Result
	require.NotPanics(t, func() { res = f.exec.Execute(context.Background(), "chrome kholo") })
	assert.False(t, res.OK)
	assert.Equal(t, models.HandlerError, res.Handler)
	assert.NotEmpty(t, res.Error)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"handler":"error","error":"`+res.Error+`"}`, string(data))
}

func TestExecute_NeverPanics(t *testing.T) {
	exec := New(nil, Deps{}, logger.NewNoOpLogger())
	inputs := []string{
		"", " ", "!!!", "whatsapp", "ko", `"`, "shutdown", "close", "open",
		"kal", "delete ''", "ççç ☃", "\x00\xff", "remind remind remind",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			res := exec.Execute(context.Background(), in)
			assert.NotEmpty(t, res.Handler, in)
		})
	}
}

func TestDispatch_Synonyms(t *testing.T) {
	f := newFixture(t)
	res := f.exec.Dispatch(context.Background(), models.IntentRecord{Intent: "launch", App: "notepad"})
	assert.Equal(t, models.HandlerOpenApp, res.Handler)
	assert.Equal(t, "notepad", f.apps.opened)

	res = f.exec.Dispatch(context.Background(), models.IntentRecord{Intent: "RESTART"})
	assert.Equal(t, "restart", res.Handler)
	assert.Equal(t, []string{"restart"}, f.system.actions)
}

func TestDispatch_GenericSystemTagCarriesNoAction(t *testing.T) {
	f := newFixture(t)
	for _, tag := range []models.Intent{"power", "system", "system_action"} {
		res := f.exec.Dispatch(context.Background(), models.IntentRecord{Intent: tag})
		assert.Equal(t, string(models.IntentSystemAction), res.Handler, tag)
		assert.Equal(t, "", res.Meta["action"], tag)
	}
	assert.Equal(t, []string{"", "", ""}, f.system.actions)

	res := f.exec.Dispatch(context.Background(), models.IntentRecord{Intent: "lock"})
	assert.Equal(t, models.ActionLock, res.Handler)
}

func TestExecute_History(t *testing.T) {
	f := newFixture(t)
	f.exec.Execute(context.Background(), "chrome kholo")
	f.history.err = errors.New("disk full")
	res := f.exec.Execute(context.Background(), "ek screenshot lo")
	assert.True(t, res.OK, "history failure does not fail the command")

	require.Len(t, f.history.entries, 2)
	first := f.history.entries[0]
	assert.Equal(t, "command", first["kind"])
	assert.Equal(t, "chrome kholo", first["raw"])
	assert.Equal(t, "open_app", first["intent"])
	assert.Equal(t, true, first["ok"])
	assert.Len(t, first["id"], 36)
}
