// Package browser opens URLs and web searches in Chrome or Edge.
package browser

import (
	"context"
	"net/url"
	"os"
	"strings"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/safety"
)

const Name = "browser"

const (
	googleSearchURL  = "https://www.google.com/search?q="
	youtubeSearchURL = "https://www.youtube.com/results?search_query="
)

type Handler struct {
	config *Config
	gate   safety.Checker
	runner process.Runner
	exists func(string) bool
	logger logger.Logger
}

func NewHandler(cfg *Config, gate safety.Checker, runner process.Runner, log logger.Logger) *Handler {
	return &Handler{
		config: cfg,
		gate:   gate,
		runner: runner,
		exists: fileExists,
		logger: log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

// WithProbe replaces the executable existence check.
func (h *Handler) WithProbe(exists func(string) bool) *Handler {
	h.exists = exists
	return h
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GoogleURL builds a search URL with spaces encoded as '+'.
func GoogleURL(query string) string {
	return googleSearchURL + url.QueryEscape(query)
}

func YouTubeURL(query string) string {
	return youtubeSearchURL + url.QueryEscape(query)
}

func (h *Handler) findExecutable(preferEdge bool) (string, bool) {
	candidates := h.config.Chrome
	if preferEdge {
		candidates = h.config.Edge
	}
	for _, p := range candidates {
		if h.exists(p) {
			return p, true
		}
	}
	return "", false
}

// Available reports whether a browser executable is installed.
func (h *Handler) Available(preferEdge bool) bool {
	_, ok := h.findExecutable(preferEdge)
	return ok
}

// Command returns the argv used to open target with exe.
func (h *Handler) Command(exe, target string) []string {
	args := []string{exe}
	if h.config.ProfilePath != "" {
		args = append(args, "--user-data-dir="+h.config.ProfilePath)
	}
	return append(args, target)
}

// OpenURL launches the browser on target. In simulation mode the launch is
// only logged.
func (h *Handler) OpenURL(ctx context.Context, target string, preferEdge bool) error {
	exe, ok := h.findExecutable(preferEdge)
	if !ok {
		h.logger.Warn("no browser executable found", nil)
		return apperrors.NewCollaboratorUnavailableError(Name, "no browser executable found")
	}
	argv := h.Command(exe, target)
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would open URL", map[string]interface{}{
			"url": target,
			"exe": exe,
		})
		return nil
	}
	h.logger.Info("opening URL", map[string]interface{}{"url": target})
	if err := h.runner.Start(ctx, argv[0], argv[1:]...); err != nil {
		h.logger.Error("open URL failed", map[string]interface{}{"error": err.Error()})
		return apperrors.NewCollaboratorFailedError(Name, err)
	}
	return nil
}

func (h *Handler) GoogleSearch(ctx context.Context, query string, preferEdge bool) error {
	return h.OpenURL(ctx, GoogleURL(strings.TrimSpace(query)), preferEdge)
}

func (h *Handler) YouTubeSearch(ctx context.Context, query string, preferEdge bool) error {
	return h.OpenURL(ctx, YouTubeURL(strings.TrimSpace(query)), preferEdge)
}
