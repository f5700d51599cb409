package filecontrol

type Config struct {
	// ConfirmThreshold is the item count above which delete needs
	// confirmation.
	ConfirmThreshold int
	// Root is where relative targets and searches are resolved.
	Root        string
	MaxReadSize int64
}

func LoadConfig(root string) *Config {
	return &Config{
		ConfirmThreshold: 5,
		Root:             root,
		MaxReadSize:      20000,
	}
}
