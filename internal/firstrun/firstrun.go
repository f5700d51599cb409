// Package firstrun prepares the working directory on startup. Every step is
// idempotent; existing files are left alone except the scan outputs, which
// are rewritten each run.
package firstrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/database"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/memory"
	"desk-assistant/pkg/registry"
)

var Dirs = []string{"logs", "data", "memory", "config"}

const (
	SettingsFile   = "config/settings.json"
	SystemAppsFile = "data/system_apps.json"
	PathsFile      = "config/paths.json"
)

// Result reports what Ensure created and what it found installed.
type Result struct {
	Created      []string        `json:"created"`
	Availability map[string]bool `json:"availability"`
	Registry     *registry.AppRegistry
}

// Ensure lays out root for s. exists probes executables; nil checks the
// file system.
func Ensure(ctx context.Context, root string, s *config.Settings, exists func(string) bool, l logger.Logger) (*Result, error) {
	log := logger.Component(l, "firstrun")
	res := &Result{}
	at := func(rel string) string { return filepath.Join(root, filepath.FromSlash(rel)) }

	for _, d := range Dirs {
		if err := os.MkdirAll(at(d), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}

	jsonPath := resolve(root, s.Memory.JSONPath)
	created, err := writeIfAbsent(jsonPath, []byte(`{"short_term": []}`))
	if err != nil {
		return nil, fmt.Errorf("init memory document: %w", err)
	}
	if created {
		res.Created = append(res.Created, jsonPath)
		log.Info("initialized memory document", map[string]interface{}{"path": jsonPath})
	}

	if err := ensureSchema(ctx, root, s.Memory, l); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return nil, err
	}
	created, err = writeIfAbsent(at(SettingsFile), data)
	if err != nil {
		return nil, fmt.Errorf("write default settings: %w", err)
	}
	if created {
		res.Created = append(res.Created, at(SettingsFile))
		log.Info("wrote default settings", map[string]interface{}{"path": at(SettingsFile)})
	}

	reg := registry.Build(s, exists)
	res.Registry = reg
	res.Availability = reg.Availability()

	avail, err := json.MarshalIndent(res.Availability, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(at(SystemAppsFile), avail, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", SystemAppsFile, err)
	}
	log.Info("wrote system apps map", map[string]interface{}{"path": at(SystemAppsFile)})

	// paths.json is informational; a failure here does not stop startup
	if err := reg.Save(at(PathsFile)); err != nil {
		log.Error("write app paths failed", map[string]interface{}{"path": at(PathsFile), "error": err.Error()})
	} else {
		log.Info("wrote app paths map", map[string]interface{}{"path": at(PathsFile)})
	}
	return res, nil
}

func ensureSchema(ctx context.Context, root string, cfg config.MemoryConfig, l logger.Logger) error {
	if cfg.Driver == "" || cfg.Driver == string(database.DialectSQLite) {
		cfg.DBPath = resolve(root, cfg.DBPath)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open memory database: %w", err)
	}
	mlog := memory.NewLog(db, nil, 0, l)
	defer mlog.Close()
	return mlog.EnsureSchema(ctx)
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func writeIfAbsent(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, data, 0o644)
}
