package whatsapp

import "strings"

var verbatimMarkers = []string{"send exactly these words", "bilkul yehi alfaaz"}

// Compose applies a tone to raw. An empty tone is detected from hints in the
// text. The bool is true when the text was rewritten and the user should
// see it before sending.
func Compose(raw, tone string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, m := range verbatimMarkers {
		if strings.Contains(lower, m) {
			return raw, false
		}
	}
	if tone == "" {
		switch {
		case strings.Contains(lower, "friendly") || strings.Contains(lower, "dostana"):
			tone = "friendly"
		case strings.Contains(lower, "formal") || strings.Contains(lower, "mulaeema"):
			tone = "formal"
		}
	}
	switch tone {
	case "friendly":
		return "(Friendly) " + raw + " 🙂", true
	case "formal":
		return "(Formal) " + raw, true
	}
	return raw, false
}
