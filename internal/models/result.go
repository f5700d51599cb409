// internal/models/result.go
package models

import "encoding/json"

// Handler names reported in Result.Handler.
const (
	HandlerWhatsApp      = "whatsapp"
	HandlerOpenApp       = "open_app"
	HandlerCloseApp      = "close_app"
	HandlerSearchWeb     = "search_web"
	HandlerOptimize      = "optimize_system"
	HandlerScreenshot    = "screenshot"
	HandlerSchedule      = "schedule"
	HandlerErrorAnalysis = "error_analysis"
	HandlerFileAction    = "file_action"
	HandlerUnknown       = "unknown"
	HandlerError         = "error"
)

// Result is the executor output. Meta entries are flattened next to ok/handler
// when encoded, so {"ok":true,"handler":"open_app","app":"chrome"}.
type Result struct {
	OK      bool
	Handler string
	Error   string
	Meta    map[string]interface{}
}

// MarshalJSON flattens Meta into the top-level object.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Meta)+3)
	for k, v := range r.Meta {
		out[k] = v
	}
	out["ok"] = r.OK
	out["handler"] = r.Handler
	if r.Error != "" {
		out["error"] = r.Error
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.OK, _ = raw["ok"].(bool)
	r.Handler, _ = raw["handler"].(string)
	r.Error, _ = raw["error"].(string)
	delete(raw, "ok")
	delete(raw, "handler")
	delete(raw, "error")
	if len(raw) > 0 {
		r.Meta = raw
	}
	return nil
}

// Envelope is the developer API response shape.
type Envelope struct {
	OK     bool                   `json:"ok"`
	Method string                 `json:"method"`
	Detail string                 `json:"detail"`
	Meta   map[string]interface{} `json:"meta"`
}

// NewEnvelope never leaves Meta nil so it always encodes as an object.
func NewEnvelope(ok bool, method, detail string, meta map[string]interface{}) Envelope {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return Envelope{OK: ok, Method: method, Detail: detail, Meta: meta}
}
