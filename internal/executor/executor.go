// Package executor turns raw command text into exactly one handler call and
// a structured Result. Execute never panics and never returns an error.
package executor

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/metrics"
	"desk-assistant/internal/handlers/filecontrol"
	"desk-assistant/internal/handlers/optimize"
	"desk-assistant/internal/intent"
	"desk-assistant/internal/models"
)

// HandlerFunc serves one intent.
type HandlerFunc func(ctx context.Context, rec models.IntentRecord) models.Result

type IntentParser interface {
	Parse(text string) models.IntentRecord
}

type WhatsApp interface {
	SendText(ctx context.Context, contact, message string, preferWeb bool) (models.Channel, error)
}

type Apps interface {
	Open(ctx context.Context, keyOrPath string, args ...string) (string, error)
	Close(ctx context.Context, name string) (int, error)
}

type Browser interface {
	GoogleSearch(ctx context.Context, query string, preferEdge bool) error
	YouTubeSearch(ctx context.Context, query string, preferEdge bool) error
}

type System interface {
	Do(ctx context.Context, action string) error
	Screenshot(ctx context.Context, path string) error
}

type Files interface {
	Do(ctx context.Context, op, target, arg string) (map[string]interface{}, error)
}

type Optimizer interface {
	Run(ctx context.Context) (optimize.Report, error)
}

type Scheduler interface {
	ScheduleFromText(ctx context.Context, text, title string) (models.Reminder, error)
}

type History interface {
	AppendHistory(ctx context.Context, kind string, payload interface{}) error
}

// Deps are the collaborators. Any may be nil; the matching intent then
// reports the collaborator as unavailable.
type Deps struct {
	WhatsApp  WhatsApp
	Apps      Apps
	Browser   Browser
	System    System
	Files     Files
	Optimizer Optimizer
	Scheduler Scheduler
	History   History
}

var quotedRe = regexp.MustCompile(`["']([^"']+)["']`)

const (
	ScreenshotPath = "screenshot.png"
	ReminderTitle  = "Reminder"
)

type Executor struct {
	parser   IntentParser
	deps     Deps
	handlers map[models.Intent]HandlerFunc
	logger   logger.Logger
}

func New(parser IntentParser, deps Deps, l logger.Logger) *Executor {
	if parser == nil {
		parser = intent.NewParser(l)
	}
	e := &Executor{
		parser:   parser,
		deps:     deps,
		handlers: make(map[models.Intent]HandlerFunc),
		logger:   logger.Component(l, "executor"),
	}

	e.RegisterHandler(models.IntentSendWhatsApp, e.handleWhatsApp)
	e.RegisterHandler(models.IntentOpenApp, e.handleOpenApp)
	e.RegisterHandler(models.IntentCloseApp, e.handleCloseApp)
	e.RegisterHandler(models.IntentSearchWeb, e.handleSearch)
	e.RegisterHandler(models.IntentSystemAction, e.handleSystemAction)
	e.RegisterHandler(models.IntentOptimizeSystem, e.handleOptimize)
	e.RegisterHandler(models.IntentScreenshot, e.handleScreenshot)
	e.RegisterHandler(models.IntentErrorAnalysis, e.handleErrorAnalysis)
	e.RegisterHandler(models.IntentSchedule, e.handleSchedule)
	e.RegisterHandler(models.IntentFileAction, e.handleFileAction)

	return e
}

// RegisterHandler replaces the handler for one intent.
func (e *Executor) RegisterHandler(in models.Intent, fn HandlerFunc) {
	e.handlers[in] = fn
}

// Parse exposes the configured parser.
func (e *Executor) Parse(text string) models.IntentRecord {
	return e.parser.Parse(text)
}

// systemActionTags are the intent tags that name a system action directly.
var systemActionTags = map[string]bool{
	models.ActionShutdown: true,
	models.ActionRestart:  true,
	models.ActionSleep:    true,
	models.ActionLock:     true,
}

// Execute parses raw and dispatches it.
func (e *Executor) Execute(ctx context.Context, raw string) models.Result {
	return e.Dispatch(ctx, e.parser.Parse(raw))
}

// Dispatch routes an already parsed record. The intent tag is normalised,
// so callers may pass synonyms such as "launch" or "shutdown".
func (e *Executor) Dispatch(ctx context.Context, rec models.IntentRecord) (res models.Result) {
	start := time.Now()
	id := uuid.New().String()
	tag := strings.ToLower(strings.TrimSpace(string(rec.Intent)))
	rec.Intent = intent.NormalizeIntent(tag)
	if rec.Intent == models.IntentSystemAction && rec.Action == "" && systemActionTags[tag] {
		rec.Action = tag
	}

	defer func() {
		if r := recover(); r != nil {
			perr := apperrors.NewHandlerPanicError(string(rec.Intent), r)
			e.logger.Error("handler panicked", map[string]interface{}{
				"id":     id,
				"intent": string(rec.Intent),
				"error":  perr.Error(),
			})
			res = models.Result{OK: false, Handler: models.HandlerError, Error: perr.Message}
		}
		e.finish(ctx, id, rec, res, time.Since(start))
	}()

	fn, ok := e.handlers[rec.Intent]
	if !ok {
		return models.Result{OK: false, Handler: models.HandlerUnknown}
	}
	return fn(ctx, rec)
}

func (e *Executor) finish(ctx context.Context, id string, rec models.IntentRecord, res models.Result, took time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("history sink panicked", map[string]interface{}{"id": id, "panic": r})
		}
	}()
	metrics.CommandsTotal.WithLabelValues(res.Handler, strconv.FormatBool(res.OK)).Inc()
	metrics.CommandDuration.WithLabelValues(res.Handler).Observe(took.Seconds())

	e.logger.Info("command executed", map[string]interface{}{
		"id":      id,
		"intent":  string(rec.Intent),
		"handler": res.Handler,
		"ok":      res.OK,
	})

	if e.deps.History == nil {
		return
	}
	payload := map[string]interface{}{
		"id":      id,
		"raw":     rec.Raw,
		"intent":  string(rec.Intent),
		"handler": res.Handler,
		"ok":      res.OK,
	}
	if err := e.deps.History.AppendHistory(ctx, "command", payload); err != nil {
		e.logger.Warn("history append failed", map[string]interface{}{"id": id, "error": err.Error()})
	}
}

// failed converts a collaborator error into a result for handler.
func failed(handler string, err error, meta map[string]interface{}) models.Result {
	se := apperrors.Normalize(err)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["code"] = string(se.Code)
	return models.Result{OK: false, Handler: handler, Error: se.Message, Meta: meta}
}

func unavailable(handler, collaborator string) models.Result {
	return failed(handler, apperrors.NewCollaboratorUnavailableError(collaborator, "not configured"), nil)
}

func outcome(handler string, err error, meta map[string]interface{}) models.Result {
	if err != nil {
		return failed(handler, err, meta)
	}
	return models.Result{OK: true, Handler: handler, Meta: meta}
}

func (e *Executor) handleWhatsApp(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.WhatsApp == nil {
		return unavailable(models.HandlerWhatsApp, "whatsapp")
	}
	channel, err := e.deps.WhatsApp.SendText(ctx, rec.Contact, rec.Message, rec.Channel == models.ChannelWeb)
	meta := map[string]interface{}{"contact": rec.Contact}
	if channel != "" {
		meta["channel"] = string(channel)
	}
	return outcome(models.HandlerWhatsApp, err, meta)
}

func (e *Executor) handleOpenApp(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.Apps == nil {
		return unavailable(models.HandlerOpenApp, "app_control")
	}
	meta := map[string]interface{}{"app": rec.App}
	if rec.App == "" {
		return failed(models.HandlerOpenApp, apperrors.NewInvalidArgumentError("app", "no app named"), meta)
	}
	path, err := e.deps.Apps.Open(ctx, rec.App)
	if err == nil {
		meta["path"] = path
	}
	return outcome(models.HandlerOpenApp, err, meta)
}

func (e *Executor) handleCloseApp(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.Apps == nil {
		return unavailable(models.HandlerCloseApp, "app_control")
	}
	meta := map[string]interface{}{"app": rec.App}
	if rec.App == "" {
		return failed(models.HandlerCloseApp, apperrors.NewInvalidArgumentError("app", "no app named"), meta)
	}
	n, err := e.deps.Apps.Close(ctx, rec.App)
	meta["closed"] = n
	if err != nil {
		return failed(models.HandlerCloseApp, err, meta)
	}
	return models.Result{OK: n > 0, Handler: models.HandlerCloseApp, Meta: meta}
}

func (e *Executor) handleSearch(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.Browser == nil {
		return unavailable(models.HandlerSearchWeb, "browser")
	}
	meta := map[string]interface{}{"query": rec.Raw}
	var err error
	if strings.Contains(strings.ToLower(rec.Raw), "youtube") {
		meta["site"] = "youtube"
		err = e.deps.Browser.YouTubeSearch(ctx, rec.Raw, false)
	} else {
		err = e.deps.Browser.GoogleSearch(ctx, rec.Raw, false)
	}
	return outcome(models.HandlerSearchWeb, err, meta)
}

// handleSystemAction reports the action itself as the handler name.
func (e *Executor) handleSystemAction(ctx context.Context, rec models.IntentRecord) models.Result {
	handler := rec.Action
	if handler == "" {
		handler = string(models.IntentSystemAction)
	}
	if e.deps.System == nil {
		return unavailable(handler, "system")
	}
	err := e.deps.System.Do(ctx, rec.Action)
	return outcome(handler, err, map[string]interface{}{"action": rec.Action})
}

func (e *Executor) handleOptimize(ctx context.Context, _ models.IntentRecord) models.Result {
	if e.deps.Optimizer == nil {
		return unavailable(models.HandlerOptimize, "optimize")
	}
	rep, err := e.deps.Optimizer.Run(ctx)
	if err != nil {
		return failed(models.HandlerOptimize, err, nil)
	}
	return models.Result{OK: true, Handler: models.HandlerOptimize, Meta: map[string]interface{}{
		"removed":     rep.Removed,
		"freed_bytes": rep.Freed,
	}}
}

func (e *Executor) handleScreenshot(ctx context.Context, _ models.IntentRecord) models.Result {
	if e.deps.System == nil {
		return unavailable(models.HandlerScreenshot, "system")
	}
	err := e.deps.System.Screenshot(ctx, ScreenshotPath)
	return outcome(models.HandlerScreenshot, err, map[string]interface{}{"path": ScreenshotPath})
}

// handleErrorAnalysis acknowledges the request; analysis happens in the dev
// API.
func (e *Executor) handleErrorAnalysis(_ context.Context, _ models.IntentRecord) models.Result {
	return models.Result{OK: true, Handler: models.HandlerErrorAnalysis}
}

func (e *Executor) handleSchedule(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.Scheduler == nil {
		return unavailable(models.HandlerSchedule, "scheduler")
	}
	r, err := e.deps.Scheduler.ScheduleFromText(ctx, rec.Raw, ReminderTitle)
	if err != nil {
		return failed(models.HandlerSchedule, err, nil)
	}
	return models.Result{OK: true, Handler: models.HandlerSchedule, Meta: map[string]interface{}{
		"id":    r.ID,
		"when":  r.When().Format(time.RFC3339),
		"title": r.Title,
	}}
}

// handleFileAction takes the operation from the command keyword, the target
// from the first quoted string and a move or rename destination from the
// second.
func (e *Executor) handleFileAction(ctx context.Context, rec models.IntentRecord) models.Result {
	if e.deps.Files == nil {
		return unavailable(models.HandlerFileAction, "file_control")
	}
	op := filecontrol.OpFromText(rec.Raw)
	if rec.Path == "" {
		return failed(models.HandlerFileAction, apperrors.NewInvalidArgumentError("path", "quote the file name"),
			map[string]interface{}{"op": op})
	}
	arg := ""
	if quoted := quotedRe.FindAllStringSubmatch(rec.Raw, 2); len(quoted) > 1 {
		arg = quoted[1][1]
	}
	meta, err := e.deps.Files.Do(ctx, op, rec.Path, arg)
	return outcome(models.HandlerFileAction, err, meta)
}
