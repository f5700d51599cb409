// Package whatsapp sends messages through WhatsApp Desktop, falling back to
// WhatsApp Web in the browser.
package whatsapp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/atotto/clipboard"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/process"
	"desk-assistant/internal/models"
	"desk-assistant/internal/safety"
)

const Name = "whatsapp"

// Spoken phrases.
const (
	phraseDesktopFailed = "Desktop automation fail hua, Web try kar raha hoon."
	phraseWebFailed     = "Web bhi fail hua. Copy/open/cancel options available."
	phraseSendFailed    = "Message bhejne mein problem aayi."
)

var clipboardWriteAll = clipboard.WriteAll

type Handler struct {
	config   *Config
	gate     safety.Checker
	runner   process.Runner
	web      URLOpener
	contacts ContactResolver
	speaker  Speaker
	exists   func(string) bool
	logger   logger.Logger

	mu   sync.Mutex
	logs []SendLog
}

// NewHandler wires the handler. contacts and speaker may be nil.
func NewHandler(cfg *Config, gate safety.Checker, runner process.Runner, web URLOpener, contacts ContactResolver, speaker Speaker, log logger.Logger) *Handler {
	return &Handler{
		config:   cfg,
		gate:     gate,
		runner:   runner,
		web:      web,
		contacts: contacts,
		speaker:  speaker,
		exists:   fileExists,
		logger:   log.WithFields(map[string]interface{}{"handler": Name}),
	}
}

func (h *Handler) WithProbe(exists func(string) bool) *Handler {
	h.exists = exists
	return h
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (h *Handler) say(ctx context.Context, text string) {
	if h.speaker != nil {
		h.speaker.Say(ctx, text)
	}
}

func (h *Handler) desktopExe() (string, bool) {
	for _, p := range h.config.DesktopPaths {
		if h.exists(p) {
			return p, true
		}
	}
	return "", false
}

// ensureChannel picks desktop when installed, else web. An empty channel
// means neither is usable.
func (h *Handler) ensureChannel(ctx context.Context, preferWeb bool) (models.Channel, string) {
	if !preferWeb {
		if exe, ok := h.desktopExe(); ok {
			return models.ChannelDesktop, exe
		}
		h.logger.Warn("desktop not available, attempting web fallback", nil)
		h.say(ctx, phraseDesktopFailed)
	}
	if h.gate.SimulationMode() || (h.web != nil && h.web.Available(false)) {
		return models.ChannelWeb, ""
	}
	h.logger.Error("web fallback also failed", nil)
	if !preferWeb {
		h.say(ctx, phraseWebFailed)
	}
	return "", ""
}

// phoneDigits returns the digits of s when s looks like a phone number.
func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' || r == ' ' || r == '-':
		default:
			return ""
		}
	}
	if b.Len() < 7 {
		return ""
	}
	return b.String()
}

// WebURL is the WhatsApp Web link that opens a chat with text prefilled.
func WebURL(phone, text string) string {
	q := url.Values{}
	if phone != "" {
		q.Set("phone", phone)
	}
	q.Set("text", text)
	return "https://web.whatsapp.com/send?" + q.Encode()
}

// DesktopURI is the protocol link understood by WhatsApp Desktop.
func DesktopURI(phone, text string) string {
	q := url.Values{}
	if phone != "" {
		q.Set("phone", phone)
	}
	q.Set("text", text)
	return "whatsapp://send?" + q.Encode()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// SendText delivers message to contact. Sending always needs confirmation
// of the message preview, so simulation mode never sends.
func (h *Handler) SendText(ctx context.Context, contact, message string, preferWeb bool) (models.Channel, error) {
	message, rewritten := Compose(message, "")
	if rewritten {
		h.logger.Debug("message rewritten for tone", nil)
	}

	channel, exe := h.ensureChannel(ctx, preferWeb)
	if channel == "" {
		h.copyFallback(message)
		return "", apperrors.NewCollaboratorUnavailableError(Name, "neither desktop nor web is available")
	}

	preview := "send WhatsApp message preview: " + truncate(message, h.config.PreviewLen)
	if !h.gate.RequireConfirmation(preview) {
		return channel, apperrors.NewSafetyRefusedError(preview)
	}

	phone := contact
	if h.contacts != nil {
		phone = h.contacts.ResolveContact(ctx, contact)
	}
	phone = phoneDigits(phone)

	var err error
	switch channel {
	case models.ChannelDesktop:
		err = h.runner.Start(ctx, exe, DesktopURI(phone, message))
	default:
		err = h.web.OpenURL(ctx, WebURL(phone, message), false)
	}
	if err != nil {
		h.logger.Error("send failed", map[string]interface{}{"channel": string(channel), "error": err.Error()})
		h.say(ctx, phraseSendFailed)
		h.copyFallback(message)
		return channel, apperrors.NewCollaboratorFailedError(Name, err)
	}

	h.record(contact, "text", message, channel)
	h.say(ctx, fmt.Sprintf("Message bhej diya %s ko.", contact))
	return channel, nil
}

// copyFallback leaves the message on the clipboard so the user can paste it.
func (h *Handler) copyFallback(message string) {
	if h.gate.SimulationMode() {
		h.logger.Info("[SIMULATION] would copy message to clipboard", nil)
		return
	}
	if err := clipboardWriteAll(message); err != nil {
		h.logger.Warn("clipboard unavailable", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) record(contact, kind, text string, channel models.Channel) {
	entry := SendLog{
		When:    time.Now(),
		Contact: contact,
		Kind:    kind,
		Snippet: truncate(text, h.config.SnippetLen),
		Channel: string(channel),
	}
	h.mu.Lock()
	h.logs = append(h.logs, entry)
	if over := len(h.logs) - h.config.LogSize; over > 0 && h.config.LogSize > 0 {
		h.logs = append([]SendLog(nil), h.logs[over:]...)
	}
	h.mu.Unlock()
	h.logger.Info("whatsapp send logged", map[string]interface{}{
		"contact": contact,
		"kind":    kind,
		"snippet": entry.Snippet,
	})
}

// Logs returns a copy of the send log, oldest first.
func (h *Handler) Logs() []SendLog {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]SendLog(nil), h.logs...)
}
