package browser

import "desk-assistant/internal/common/config"

type Config struct {
	ProfilePath string
	Chrome      []string
	Edge        []string
}

func LoadConfig(s *config.Settings) *Config {
	return &Config{
		ProfilePath: config.ExpandPath(s.ChromeProfilePath),
		Chrome:      config.ExpandPaths(s.AppCandidates("chrome")),
		Edge:        config.ExpandPaths(s.AppCandidates("edge")),
	}
}
