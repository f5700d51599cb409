// Package registry keeps the catalogue of apps the assistant can launch and
// resolves spoken app names against it.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"desk-assistant/internal/common/config"
)

const Version = "1.0"

// DefaultKeys are probed even when settings carry no paths for them.
var DefaultKeys = []string{"whatsapp", "chrome", "edge", "notepad"}

var defaultAliases = map[string][]string{
	"chrome":  {"google chrome", "browser"},
	"edge":    {"msedge", "microsoft edge"},
	"vscode":  {"vs code", "code", "visual studio code"},
	"notepad": {"text editor"},
}

var defaultProcesses = map[string]string{
	"edge":   "msedge.exe",
	"vscode": "Code.exe",
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Build derives a registry from settings. exists decides whether a candidate
// path is installed; nil means a real file check.
func Build(s *config.Settings, exists func(string) bool) *AppRegistry {
	if exists == nil {
		exists = fileExists
	}
	keys := map[string]struct{}{}
	for _, k := range DefaultKeys {
		keys[k] = struct{}{}
	}
	for k := range s.AppPaths {
		keys[strings.ToLower(k)] = struct{}{}
	}

	reg := &AppRegistry{
		Version:     Version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		probe:       exists,
	}
	for k := range keys {
		paths := config.ExpandPaths(s.AppCandidates(k))
		entry := AppEntry{
			Key:         k,
			DisplayName: displayName(k),
			Paths:       paths,
			Aliases:     defaultAliases[k],
			Process:     processName(k),
		}
		for _, p := range paths {
			if exists(p) {
				entry.Available = true
				break
			}
		}
		reg.Apps = append(reg.Apps, entry)
	}
	sort.Slice(reg.Apps, func(i, j int) bool { return reg.Apps[i].Key < reg.Apps[j].Key })
	return reg
}

func displayName(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func processName(key string) string {
	if p, ok := defaultProcesses[key]; ok {
		return p
	}
	return key + ".exe"
}

func LoadRegistry(path string) (*AppRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg AppRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	reg.probe = fileExists
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the parent directory.
func (r *AppRegistry) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WithProbe replaces the installed-file check used by Resolve.
func (r *AppRegistry) WithProbe(exists func(string) bool) *AppRegistry {
	r.probe = exists
	return r
}

// Lookup finds an entry by key or alias, case-insensitively.
func (r *AppRegistry) Lookup(name string) (AppEntry, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.Apps {
		for _, n := range e.Names() {
			if n == name {
				return e, true
			}
		}
	}
	return AppEntry{}, false
}

// Resolve returns the first installed executable for an entry.
func (r *AppRegistry) Resolve(e AppEntry) (string, bool) {
	probe := r.probe
	if probe == nil {
		probe = fileExists
	}
	for _, p := range e.Paths {
		if probe(p) {
			return p, true
		}
	}
	return "", false
}

// Availability maps every key to whether one of its paths is installed.
func (r *AppRegistry) Availability() map[string]bool {
	out := make(map[string]bool, len(r.Apps))
	for _, e := range r.Apps {
		out[e.Key] = e.Available
	}
	return out
}

func (r *AppRegistry) Keys() []string {
	keys := make([]string, 0, len(r.Apps))
	for _, e := range r.Apps {
		keys = append(keys, e.Key)
	}
	return keys
}
