// Package appcontrol launches and closes desktop applications.
package appcontrol

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/safety"
	"desk-assistant/pkg/registry"
)

const Name = "app_control"

type Handler struct {
	config   *Config
	registry *registry.AppRegistry
	gate     safety.Checker
	runner   process.Runner
	table    process.Table
	logger   logger.Logger
}

func NewHandler(cfg *Config, reg *registry.AppRegistry, gate safety.Checker, runner process.Runner, table process.Table, log logger.Logger) *Handler {
	return &Handler{
		config:   cfg,
		registry: reg,
		gate:     gate,
		runner:   runner,
		table:    table,
		logger:   log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

// Registry exposes the catalogue the handler resolves against.
func (h *Handler) Registry() *registry.AppRegistry {
	return h.registry
}

// Resolve maps a spoken name or absolute path to an executable.
func (h *Handler) Resolve(keyOrPath string) (string, error) {
	if filepath.IsAbs(keyOrPath) {
		return keyOrPath, nil
	}
	entry, score, ok := h.registry.Match(keyOrPath, h.config.SimilarityThreshold)
	if !ok {
		err := apperrors.NewCollaboratorUnavailableError(Name, fmt.Sprintf("app not found: %s", keyOrPath))
		if s := h.registry.Suggest(keyOrPath); len(s) > 0 {
			err = err.WithMetadata("suggestions", s)
		}
		return "", err
	}
	path, ok := h.registry.Resolve(entry)
	if !ok {
		return "", apperrors.NewCollaboratorUnavailableError(Name, fmt.Sprintf("%s is not installed", entry.Key))
	}
	if score < 1 {
		h.logger.Debug("fuzzy app match", map[string]interface{}{"input": keyOrPath, "key": entry.Key, "score": score})
	}
	return path, nil
}

// Open launches an app by registry name or absolute path. Launching is not
// gated; simulation mode only logs it.
func (h *Handler) Open(ctx context.Context, keyOrPath string, args ...string) (string, error) {
	path, err := h.Resolve(keyOrPath)
	if err != nil {
		h.logger.Warn("app not found", map[string]interface{}{"app": keyOrPath})
		return "", err
	}
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would open app", map[string]interface{}{
			"command": strings.Join(append([]string{path}, args...), " "),
		})
		return path, nil
	}
	if err := h.runner.Start(ctx, path, args...); err != nil {
		h.logger.Error("open app failed", map[string]interface{}{"app": keyOrPath, "error": err.Error()})
		return "", apperrors.NewCollaboratorFailedError(Name, err)
	}
	return path, nil
}

// ProcessName maps an app name to the executable name its processes run as.
func (h *Handler) ProcessName(name string) string {
	name = strings.TrimSpace(name)
	if entry, ok := h.registry.Lookup(name); ok && entry.Process != "" {
		return entry.Process
	}
	if filepath.Ext(name) != "" {
		return name
	}
	return name + ".exe"
}

// Close terminates every process running as name and returns the count.
// It needs confirmation. A refusal in simulation mode logs how many
// processes would have been terminated.
func (h *Handler) Close(ctx context.Context, name string) (int, error) {
	proc := h.ProcessName(name)
	desc := "terminate processes named " + proc
	if !h.gate.RequireConfirmation(desc) {
		if h.gate.SimulationMode() {
			if n, err := h.table.Count(ctx, proc); err == nil {
				h.logger.Info("[SIMULATION] would terminate", map[string]interface{}{"process": proc, "count": n})
			}
		}
		return 0, apperrors.NewSafetyRefusedError(desc)
	}
	n, err := h.table.Terminate(ctx, proc)
	if err != nil {
		return n, apperrors.NewCollaboratorFailedError(Name, err)
	}
	h.logger.Info("terminated processes", map[string]interface{}{"process": proc, "count": n})
	return n, nil
}

// Scan returns the availability map of every registered app.
func (h *Handler) Scan() map[string]bool {
	return h.registry.Availability()
}
