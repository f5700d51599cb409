package whatsapp

import "desk-assistant/internal/common/config"

type Config struct {
	DesktopPaths []string
	// LogSize bounds the in-memory send log.
	LogSize    int
	PreviewLen int
	SnippetLen int
}

func LoadConfig(s *config.Settings) *Config {
	return &Config{
		DesktopPaths: config.ExpandPaths(s.AppCandidates("whatsapp")),
		LogSize:      50,
		PreviewLen:   120,
		SnippetLen:   80,
	}
}
