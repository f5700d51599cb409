// Package optimize performs the confirmed system cleanup.
package optimize

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/safety"
)

const (
	Name        = "optimize_system"
	description = "optimize system cleanup"
)

// Report summarises one cleanup pass.
type Report struct {
	Removed int   `json:"removed"`
	Freed   int64 `json:"freed_bytes"`
	Skipped int   `json:"skipped"`
}

type Handler struct {
	config *Config
	gate   safety.Checker
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(cfg *Config, gate safety.Checker, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		gate:   gate,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

// Run removes files older than MaxAge from the configured directories. It
// is refused unless confirmed outside simulation mode.
func (h *Handler) Run(ctx context.Context) (Report, error) {
	var rep Report
	if !h.gate.RequireConfirmation(description) {
		return rep, apperrors.NewSafetyRefusedError(description)
	}
	cutoff := h.now().Add(-h.config.MaxAge)
	for _, dir := range h.config.Dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil || d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil || info.ModTime().After(cutoff) {
				return nil
			}
			if err := os.Remove(path); err != nil {
				rep.Skipped++
				return nil
			}
			rep.Removed++
			rep.Freed += info.Size()
			return nil
		})
		if err != nil {
			return rep, apperrors.NewCollaboratorFailedError(Name, err)
		}
	}
	h.logger.Info("cleanup finished", map[string]interface{}{
		"removed": rep.Removed,
		"freed":   rep.Freed,
		"skipped": rep.Skipped,
	})
	return rep, nil
}
