package optimize

import (
	"os"
	"time"
)

type Config struct {
	// Dirs are swept for stale files.
	Dirs   []string
	MaxAge time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Dirs:   []string{os.TempDir()},
		MaxAge: 7 * 24 * time.Hour,
	}
}
