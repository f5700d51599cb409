// internal/intent/parser.go
package intent

import (
	"fmt"
	"math"
	"strings"

	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/models"
)

// Parser classifies free text into an IntentRecord. It holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	wakePrefixes []string
	logger       logger.Logger
}

// Option customises a Parser.
type Option func(*Parser)

// WithWakeWords replaces the default wake phrases. Each word is stripped when
// it is followed by a comma or a space, or when it is the whole input.
func WithWakeWords(words []string) Option {
	return func(p *Parser) {
		prefixes := make([]string, 0, len(words)*2)
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			prefixes = append(prefixes, w+",", w+" ")
		}
		if len(prefixes) > 0 {
			p.wakePrefixes = prefixes
		}
	}
}

// NewParser creates a Parser.
func NewParser(log logger.Logger, opts ...Option) *Parser {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	p := &Parser{
		wakePrefixes: defaultWakePrefixes,
		logger:       logger.Component(log, "intent"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser(nil)

// Parse classifies text with the default wake words.
func Parse(text string) models.IntentRecord {
	return defaultParser.Parse(text)
}

// Parse never fails: anything it cannot classify, including an internal
// fault, comes back as unknown with confidence 0.5.
func (p *Parser) Parse(text string) (rec models.IntentRecord) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("intent parse failed", map[string]interface{}{
				"error": fmt.Sprintf("%v", r),
			})
			rec = unknownRecord(text)
		}
	}()

	rec = p.classify(text)
	rec.Confidence = round2(rec.Confidence)

	p.logger.Debug("intent parsed", map[string]interface{}{
		"intent":     string(rec.Intent),
		"confidence": rec.Confidence,
		"channel":    string(rec.Channel),
	})
	return rec
}

func (p *Parser) classify(raw string) models.IntentRecord {
	rec := unknownRecord(raw)
	lower := p.stripWake(strings.TrimSpace(strings.ToLower(raw)))
	if lower == "" {
		return rec
	}

	switch {
	case strings.Contains(lower, "whatsapp web") || webTokenRe.MatchString(lower):
		rec.Channel = models.ChannelWeb
	case strings.Contains(lower, "whatsapp"):
		rec.Channel = models.ChannelDesktop
	}

	if strings.Contains(lower, "whatsapp") && containsAny(lower, sendVerbs) {
		rec.Intent = models.IntentSendWhatsApp
		rec.Confidence = confidenceWhatsApp
		rec.Contact = extractContact(lower)
		rec.Message = extractMessage(raw)
		return rec
	}

	switch {
	case scheduleRe.MatchString(lower):
		rec.Intent, rec.Confidence = models.IntentSchedule, confidenceSchedule
	case errorRe.MatchString(lower):
		rec.Intent, rec.Confidence = models.IntentErrorAnalysis, confidenceError
	case containsAny(lower, shutdownWords):
		rec.Intent, rec.Action, rec.Confidence = models.IntentSystemAction, models.ActionShutdown, confidenceShutdown
	case containsAny(lower, restartWords):
		rec.Intent, rec.Action, rec.Confidence = models.IntentSystemAction, models.ActionRestart, confidenceRestart
	case strings.Contains(lower, "sleep"):
		rec.Intent, rec.Action, rec.Confidence = models.IntentSystemAction, models.ActionSleep, confidenceSleep
	case strings.Contains(lower, "lock"):
		rec.Intent, rec.Action, rec.Confidence = models.IntentSystemAction, models.ActionLock, confidenceLock
	case containsAny(lower, openWords):
		rec.Intent, rec.Confidence = models.IntentOpenApp, confidenceOpenApp
		rec.App = appNameRe.FindString(lower)
	case containsAny(lower, closeWords):
		rec.Intent, rec.Confidence = models.IntentCloseApp, confidenceCloseApp
		rec.App = appNameRe.FindString(lower)
	}

	// search can still claim an open_app match ("chrome kholo aur search karo")
	if (rec.Intent == models.IntentOpenApp || rec.Intent == models.IntentUnknown) && containsAny(lower, searchWords) {
		rec.Intent, rec.Confidence = models.IntentSearchWeb, confidenceSearch
		return rec
	}
	if rec.Intent != models.IntentUnknown {
		return rec
	}

	switch {
	case containsAny(lower, fileActionWords):
		rec.Intent, rec.Confidence = models.IntentFileAction, confidenceFileAction
		rec.Path = quotedText(raw)
	case optimizeRe.MatchString(lower):
		rec.Intent, rec.Confidence = models.IntentOptimizeSystem, confidenceOptimize
	case screenshotRe.MatchString(lower):
		rec.Intent, rec.Confidence = models.IntentScreenshot, confidenceScreenshot
	}
	return rec
}

func (p *Parser) stripWake(lower string) string {
	for _, w := range p.wakePrefixes {
		if lower == strings.TrimSpace(strings.TrimSuffix(w, ",")) {
			return ""
		}
		if strings.HasPrefix(lower, w) {
			return strings.TrimSpace(lower[len(w):])
		}
	}
	return lower
}

// NormalizeIntent maps a loose intent tag onto the closed set. Unrecognised
// tags become unknown.
func NormalizeIntent(tag string) models.Intent {
	key := strings.ToLower(strings.TrimSpace(tag))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if canonical, ok := synonyms[key]; ok {
		return models.Intent(canonical)
	}
	return models.IntentUnknown
}

func unknownRecord(raw string) models.IntentRecord {
	return models.IntentRecord{
		Intent:     models.IntentUnknown,
		Confidence: confidenceDefault,
		Channel:    models.ChannelAuto,
		Raw:        raw,
	}
}

func extractContact(lower string) string {
	if m := rosterRe.FindStringSubmatch(lower); m != nil {
		return m[1]
	}
	if m := koContactRe.FindStringSubmatch(lower); m != nil {
		return strings.Trim(m[1], " ,.")
	}
	return ""
}

func extractMessage(raw string) string {
	if q := quotedText(raw); q != "" {
		return q
	}
	if m := afterVerbRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func quotedText(raw string) string {
	m := quotedRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[2])
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
