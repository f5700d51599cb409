// Package system performs power actions, screenshots and resource
// snapshots.
package system

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/safety"
)

const Name = "system"

// ungated actions run without confirmation.
var ungated = map[string]bool{ActionLock: true}

var confirmations = map[string]string{
	ActionLogoff:    "log off current user",
	ActionHibernate: "hibernate system",
}

type Handler struct {
	config *Config
	gate   safety.Checker
	runner process.Runner
	logger logger.Logger
}

func NewHandler(cfg *Config, gate safety.Checker, runner process.Runner, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		gate:   gate,
		runner: runner,
		logger: log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

// Supported reports whether action has a command on this platform.
func (h *Handler) Supported(action string) bool {
	_, ok := h.config.Commands[action]
	return ok
}

// Do runs a power action. Everything but lock needs confirmation.
func (h *Handler) Do(ctx context.Context, action string) error {
	argv, ok := h.config.Commands[action]
	if !ok {
		return apperrors.NewInvalidArgumentError("action", fmt.Sprintf("unsupported system action %q", action))
	}
	if !ungated[action] {
		desc := action
		if d, ok := confirmations[action]; ok {
			desc = d
		}
		if !h.gate.RequireConfirmation(desc) {
			return apperrors.NewSafetyRefusedError(desc)
		}
	}
	return h.run(ctx, argv)
}

func (h *Handler) Shutdown(ctx context.Context) error { return h.Do(ctx, ActionShutdown) }
func (h *Handler) Restart(ctx context.Context) error  { return h.Do(ctx, ActionRestart) }
func (h *Handler) Sleep(ctx context.Context) error    { return h.Do(ctx, ActionSleep) }
func (h *Handler) Lock(ctx context.Context) error     { return h.Do(ctx, ActionLock) }

func (h *Handler) run(ctx context.Context, argv []string) error {
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would run", map[string]interface{}{"command": strings.Join(argv, " ")})
		return nil
	}
	if err := h.runner.Start(ctx, argv[0], argv[1:]...); err != nil {
		h.logger.Error("command failed", map[string]interface{}{"error": err.Error()})
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

// Screenshot captures the primary screen to path.
func (h *Handler) Screenshot(ctx context.Context, path string) error {
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would save screenshot", map[string]interface{}{"path": path})
		return nil
	}
	if len(h.config.ScreenshotCommand) == 0 {
		return apperrors.NewCollaboratorUnavailableError("screenshot", "no capture command for "+runtime.GOOS)
	}
	argv := make([]string, len(h.config.ScreenshotCommand))
	for i, a := range h.config.ScreenshotCommand {
		argv[i] = strings.ReplaceAll(a, "{path}", path)
	}
	return h.run(ctx, argv)
}

// Status samples CPU, memory and disk usage. Individual probe failures
// leave their field at zero.
func (h *Handler) Status(ctx context.Context) Status {
	st := Status{OS: runtime.GOOS}
	if info, err := host.InfoWithContext(ctx); err == nil {
		st.Hostname = info.Hostname
		st.Uptime = info.Uptime
	}
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		st.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		st.RAMPercent = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(ctx, h.config.DiskPath); err == nil {
		st.DiskPercent = du.UsedPercent
	} else {
		h.logger.Debug("disk usage unavailable", map[string]interface{}{"error": err.Error()})
	}
	return st
}
