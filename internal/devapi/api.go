// Package devapi exposes the assistant's operations as plain functions that
// return an Envelope, plus a gin server for local development.
package devapi

import (
	"context"
	"fmt"
	"strings"

	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/handlers/optimize"
	"desk-assistant/internal/handlers/system"
	"desk-assistant/internal/models"
)

const (
	MethodLocal     = "local"
	MethodNLP       = "nlp"
	MethodDesktop   = "desktop"
	MethodWeb       = "web"
	MethodSystem    = "system"
	MethodAI        = "ai"
	MethodScheduler = "scheduler"
)

const fixHint = "Check logs and restart the app."

type Executor interface {
	Parse(text string) models.IntentRecord
	Execute(ctx context.Context, raw string) models.Result
}

type Apps interface {
	Scan() map[string]bool
	Open(ctx context.Context, keyOrPath string, args ...string) (string, error)
	Close(ctx context.Context, name string) (int, error)
}

type WhatsApp interface {
	SendText(ctx context.Context, contact, message string, preferWeb bool) (models.Channel, error)
}

type System interface {
	Supported(action string) bool
	Do(ctx context.Context, action string) error
	Status(ctx context.Context) system.Status
}

type Optimizer interface {
	Run(ctx context.Context) (optimize.Report, error)
}

type Scheduler interface {
	ScheduleFromText(ctx context.Context, text, title string) (models.Reminder, error)
	Pending(ctx context.Context) ([]models.Reminder, error)
}

// ScanRecorder persists app scan results.
type ScanRecorder interface {
	RecordScan(ctx context.Context, data interface{}) error
}

// Deps mirrors executor.Deps; nil collaborators produce ok=false envelopes.
type Deps struct {
	Executor  Executor
	Apps      Apps
	WhatsApp  WhatsApp
	System    System
	Optimizer Optimizer
	Scheduler Scheduler
	Scans     ScanRecorder
}

type API struct {
	deps   Deps
	logger logger.Logger
}

func New(deps Deps, l logger.Logger) *API {
	return &API{deps: deps, logger: logger.Component(l, "devapi")}
}

func notConfigured(method, what string) models.Envelope {
	return models.NewEnvelope(false, method, what+" not configured", nil)
}

// ScanSystemApps reports which registered apps are installed and records the
// scan when a recorder is attached.
func (a *API) ScanSystemApps(ctx context.Context) models.Envelope {
	if a.deps.Apps == nil {
		return notConfigured(MethodLocal, "app control")
	}
	apps := a.deps.Apps.Scan()
	if a.deps.Scans != nil {
		if err := a.deps.Scans.RecordScan(ctx, apps); err != nil {
			a.logger.Warn("record scan failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return models.NewEnvelope(true, MethodLocal, "Scan complete", map[string]interface{}{"apps": apps})
}

func (a *API) ParseIntent(text string) models.Envelope {
	if a.deps.Executor == nil {
		return notConfigured(MethodNLP, "parser")
	}
	rec := a.deps.Executor.Parse(text)
	return models.NewEnvelope(true, MethodNLP, "Parsed intent", map[string]interface{}{"intent": rec})
}

// SendWhatsAppMessage reports the requested channel as the method, "web"
// only when channel is explicitly web.
func (a *API) SendWhatsAppMessage(ctx context.Context, contact, message string, channel models.Channel) models.Envelope {
	preferWeb := channel == models.ChannelWeb
	method := MethodDesktop
	if preferWeb {
		method = MethodWeb
	}
	if a.deps.WhatsApp == nil {
		return notConfigured(method, "whatsapp")
	}
	_, err := a.deps.WhatsApp.SendText(ctx, contact, message, preferWeb)
	detail := "Message sent"
	if err != nil {
		a.logger.Warn("send failed", map[string]interface{}{"contact": contact, "error": err.Error()})
		detail = "Failed to send"
	}
	return models.NewEnvelope(err == nil, method, detail, map[string]interface{}{"contact": contact})
}

func (a *API) OpenApp(ctx context.Context, keyOrPath string) models.Envelope {
	if a.deps.Apps == nil {
		return notConfigured(MethodDesktop, "app control")
	}
	_, err := a.deps.Apps.Open(ctx, keyOrPath)
	detail := "App opened"
	if err != nil {
		detail = "Failed to open"
	}
	return models.NewEnvelope(err == nil, MethodDesktop, detail, map[string]interface{}{"app": keyOrPath})
}

func (a *API) CloseApp(ctx context.Context, processName string) models.Envelope {
	if a.deps.Apps == nil {
		return notConfigured(MethodDesktop, "app control")
	}
	n, err := a.deps.Apps.Close(ctx, processName)
	if err != nil {
		a.logger.Warn("close failed", map[string]interface{}{"process": processName, "error": err.Error()})
	}
	detail := "No process closed"
	if n > 0 {
		detail = fmt.Sprintf("Closed %d processes", n)
	}
	return models.NewEnvelope(n > 0, MethodDesktop, detail, map[string]interface{}{"process": processName})
}

func (a *API) SystemStatus(ctx context.Context) models.Envelope {
	if a.deps.System == nil {
		return notConfigured(MethodLocal, "system")
	}
	st := a.deps.System.Status(ctx)
	return models.NewEnvelope(true, MethodLocal, "System usage fetched", map[string]interface{}{
		"os":             st.OS,
		"hostname":       st.Hostname,
		"cpu_percent":    st.CPUPercent,
		"ram_percent":    st.RAMPercent,
		"disk_percent":   st.DiskPercent,
		"uptime_seconds": st.Uptime,
	})
}

// SystemAction runs a power action. Detail reads "<Action> initiated" or
// "<Action> blocked".
func (a *API) SystemAction(ctx context.Context, action string) models.Envelope {
	action = strings.ToLower(strings.TrimSpace(action))
	if a.deps.System == nil {
		return notConfigured(MethodSystem, "system")
	}
	if !a.deps.System.Supported(action) {
		return models.NewEnvelope(false, MethodSystem, "Unsupported action", map[string]interface{}{"action": action})
	}
	err := a.deps.System.Do(ctx, action)
	label := strings.ToUpper(action[:1]) + action[1:]
	if err != nil {
		return models.NewEnvelope(false, MethodSystem, label+" blocked", nil)
	}
	return models.NewEnvelope(true, MethodSystem, label+" initiated", nil)
}

func (a *API) OptimizeSystem(ctx context.Context) models.Envelope {
	if a.deps.Optimizer == nil {
		return notConfigured(MethodSystem, "optimizer")
	}
	rep, err := a.deps.Optimizer.Run(ctx)
	if err != nil {
		return models.NewEnvelope(false, MethodSystem, "Optimization blocked or simulated", nil)
	}
	return models.NewEnvelope(true, MethodSystem, "Optimization completed", map[string]interface{}{
		"removed":     rep.Removed,
		"freed_bytes": rep.Freed,
	})
}

// ExplainError echoes the error text and attaches a hint for recognised
// error kinds.
func (a *API) ExplainError(text string) models.Envelope {
	meta := map[string]interface{}{"analysis": text}
	if hint := hintFor(text); hint != "" {
		meta["hint"] = hint
	}
	return models.NewEnvelope(true, MethodAI, "Analysis generated", meta)
}

// FixErrorSafely never changes anything.
func (a *API) FixErrorSafely(_ string) models.Envelope {
	return models.NewEnvelope(false, MethodAI, "No automatic fix applied; guidance available",
		map[string]interface{}{"hint": fixHint})
}

func (a *API) ScheduleTask(ctx context.Context, naturalText, title string) models.Envelope {
	if a.deps.Scheduler == nil {
		return notConfigured(MethodScheduler, "scheduler")
	}
	meta := map[string]interface{}{"title": title}
	r, err := a.deps.Scheduler.ScheduleFromText(ctx, naturalText, title)
	if err != nil {
		a.logger.Info("schedule rejected", map[string]interface{}{"text": naturalText, "error": err.Error()})
		return models.NewEnvelope(false, MethodScheduler, "Failed to schedule", meta)
	}
	meta["id"] = r.ID
	meta["when_ts"] = r.WhenTS
	return models.NewEnvelope(true, MethodScheduler, "Scheduled", meta)
}

// Execute runs a raw command through the executor.
func (a *API) Execute(ctx context.Context, raw string) models.Result {
	if a.deps.Executor == nil {
		return models.Result{OK: false, Handler: models.HandlerUnknown, Error: "executor not configured"}
	}
	return a.deps.Executor.Execute(ctx, raw)
}

func (a *API) Reminders(ctx context.Context) ([]models.Reminder, error) {
	if a.deps.Scheduler == nil {
		return nil, nil
	}
	return a.deps.Scheduler.Pending(ctx)
}

var errorHints = []struct {
	needle string
	hint   string
}{
	{"permission denied", "Run the command from an account that owns the file, or pick another path."},
	{"access is denied", "Run the command from an account that owns the file, or pick another path."},
	{"no such file", "Check the path; quote names that contain spaces."},
	{"not found", "Check the path or app name and run a new app scan."},
	{"connection refused", "The target service is not running; start it and retry."},
	{"timeout", "The operation took too long; retry or check the network."},
	{"database is locked", "Another process holds the memory database; close it and retry."},
}

func hintFor(text string) string {
	lower := strings.ToLower(text)
	for _, h := range errorHints {
		if strings.Contains(lower, h.needle) {
			return h.hint
		}
	}
	return ""
}
