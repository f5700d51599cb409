// internal/intent/rules.go
package intent

import "regexp"

// Confidence weights per branch. They are priority weights, not probabilities.
const (
	confidenceDefault    = 0.5
	confidenceWhatsApp   = 0.88
	confidenceSchedule   = 0.85
	confidenceError      = 0.80
	confidenceShutdown   = 0.92
	confidenceRestart    = 0.90
	confidenceSleep      = 0.80
	confidenceLock       = 0.80
	confidenceOpenApp    = 0.80
	confidenceCloseApp   = 0.80
	confidenceSearch     = 0.80
	confidenceFileAction = 0.75
	confidenceOptimize   = 0.80
	confidenceScreenshot = 0.85
)

// defaultWakePrefixes are tried in order against the head of the lower-cased
// input; the first match is stripped.
var defaultWakePrefixes = []string{"hey don", "don,", "don ", " don"}

var (
	webTokenRe = regexp.MustCompile(`\bweb\b`)

	rosterRe    = regexp.MustCompile(`\b(ali|ahmad|bilal|zara|fatima|hassan|usman)\b`)
	koContactRe = regexp.MustCompile(`\bko\s+([\w\.\-]+)`)
	quotedRe    = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	afterVerbRe = regexp.MustCompile(`(?i)(?:msg|message|bolo|kaho|kro|karo)\s+(.*)$`)

	scheduleRe   = regexp.MustCompile(`\b(remind|reminder|uthana|yaad\s*rakhna|schedule)\b`)
	errorRe      = regexp.MustCompile(`\berror\b`)
	appNameRe    = regexp.MustCompile(`(chrome|edge|whatsapp|vs\s?code|notepad|spotify)`)
	optimizeRe   = regexp.MustCompile(`\b(optimi[zs]e|optimize|system\s*optimize|saaf|clean)\b`)
	screenshotRe = regexp.MustCompile(`\bscreenshot\b|screen\s*shot`)
)

var (
	sendVerbs       = []string{"msg", "message", "bolo", "kaho", "karo", "kro"}
	shutdownWords   = []string{"shutdown", "band kar", "band kr", "pc band"}
	restartWords    = []string{"restart", "dobara start"}
	openWords       = []string{"kholo", "open", "launch"}
	closeWords      = []string{"band karo", "close", "quit"}
	searchWords     = []string{"search", "talash"}
	fileActionWords = []string{"delete", "remove", "rename", "move", "create"}
)

// synonyms maps loose intent tags (from the dev API or other callers) onto
// the closed set.
var synonyms = map[string]string{
	"send_whatsapp": "send_whatsapp", "whatsapp": "send_whatsapp", "send": "send_whatsapp",
	"message": "send_whatsapp", "msg": "send_whatsapp", "send_message": "send_whatsapp",

	"open_app": "open_app", "open": "open_app", "launch": "open_app", "run": "open_app",
	"start": "open_app", "kholo": "open_app",

	"close_app": "close_app", "close": "close_app", "quit": "close_app", "kill": "close_app",
	"exit": "close_app",

	"search_web": "search_web", "search": "search_web", "google": "search_web",
	"web_search": "search_web", "talash": "search_web",

	"system_action": "system_action", "system": "system_action", "power": "system_action",
	"shutdown": "system_action", "restart": "system_action", "sleep": "system_action",
	"lock": "system_action",

	"file_action": "file_action", "file": "file_action", "files": "file_action",

	"optimize_system": "optimize_system", "optimize": "optimize_system",
	"optimise": "optimize_system", "clean": "optimize_system", "cleanup": "optimize_system",

	"schedule": "schedule", "remind": "schedule", "reminder": "schedule", "alarm": "schedule",

	"error_analysis": "error_analysis", "error": "error_analysis", "explain_error": "error_analysis",

	"screenshot": "screenshot", "screen_shot": "screenshot", "capture": "screenshot",

	"unknown": "unknown",
}
