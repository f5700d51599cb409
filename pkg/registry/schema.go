package registry

// AppRegistry is the on-disk catalogue of launchable apps written to
// config/paths.json on first run.
type AppRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Apps        []AppEntry `json:"apps"`

	probe func(string) bool
}

type AppEntry struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Paths       []string `json:"paths"`
	Aliases     []string `json:"aliases,omitempty"`
	Process     string   `json:"process"`
	Available   bool     `json:"available"`
}

// Names returns the key followed by every alias.
func (e AppEntry) Names() []string {
	return append([]string{e.Key}, e.Aliases...)
}
