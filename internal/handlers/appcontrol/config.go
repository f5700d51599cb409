package appcontrol

import (
	"desk-assistant/internal/common/config"
	"desk-assistant/pkg/registry"
)

type Config struct {
	SimilarityThreshold float64
}

func LoadConfig(s *config.Settings) *Config {
	threshold := s.SimilarityThreshold
	if threshold <= 0 {
		threshold = registry.DefaultThreshold
	}
	return &Config{SimilarityThreshold: threshold}
}
