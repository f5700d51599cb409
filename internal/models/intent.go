// internal/models/intent.go
package models

// Intent is the closed set of command classifications.
type Intent string

const (
	IntentSendWhatsApp   Intent = "send_whatsapp"
	IntentOpenApp        Intent = "open_app"
	IntentCloseApp       Intent = "close_app"
	IntentSearchWeb      Intent = "search_web"
	IntentSystemAction   Intent = "system_action"
	IntentFileAction     Intent = "file_action"
	IntentOptimizeSystem Intent = "optimize_system"
	IntentSchedule       Intent = "schedule"
	IntentErrorAnalysis  Intent = "error_analysis"
	IntentScreenshot     Intent = "screenshot"
	IntentUnknown        Intent = "unknown"
)

// Intents lists every member of the closed set.
var Intents = []Intent{
	IntentSendWhatsApp,
	IntentOpenApp,
	IntentCloseApp,
	IntentSearchWeb,
	IntentSystemAction,
	IntentFileAction,
	IntentOptimizeSystem,
	IntentSchedule,
	IntentErrorAnalysis,
	IntentScreenshot,
	IntentUnknown,
}

// Valid reports whether i belongs to the closed set.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Channel is the WhatsApp delivery path.
type Channel string

const (
	ChannelAuto    Channel = "auto"
	ChannelDesktop Channel = "desktop"
	ChannelWeb     Channel = "web"
)

// System action sub-kinds.
const (
	ActionShutdown = "shutdown"
	ActionRestart  = "restart"
	ActionSleep    = "sleep"
	ActionLock     = "lock"
)

// IntentRecord is the parser output. Field names are part of the external contract.
type IntentRecord struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Channel    Channel `json:"channel"`
	Contact    string  `json:"contact"`
	Message    string  `json:"message"`
	App        string  `json:"app"`
	Path       string  `json:"path"`
	Action     string  `json:"action"`
	Raw        string  `json:"raw"`
}
