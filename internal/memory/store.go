// Package memory holds the assistant's persisted state: a JSON document of
// preferences (nicknames, preferred channel, tone) and a relational log of
// reminders, history and contacts.
package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
)

// Document is the mutable JSON memory object. Last writer wins.
type Document map[string]interface{}

// Well-known document keys.
const (
	KeyNicknames        = "nicknames"
	KeyPreferredChannel = "preferred_whatsapp_channel"
	KeyLastTone         = "last_tone"
)

// DefaultDocument is returned by Read while no file exists yet.
func DefaultDocument() Document {
	return Document{
		KeyNicknames:        map[string]interface{}{},
		KeyPreferredChannel: "desktop",
		KeyLastTone:         "friendly",
	}
}

// Store serializes every operation on the JSON document through one lock.
// Failures are logged and reported as false or the default value, never
// returned to the caller.
type Store struct {
	path   string
	log    *Log
	logger logger.Logger

	mu          sync.Mutex
	schemaReady atomic.Bool
}

// NewStore creates a Store for the document at path. log may be nil, in
// which case Write does not touch a relational schema.
func NewStore(path string, log *Log, l logger.Logger) *Store {
	return &Store{
		path:   path,
		log:    log,
		logger: logger.Component(l, "memory"),
	}
}

// Log returns the relational log, or nil.
func (s *Store) Log() *Log {
	return s.log
}

func (s *Store) Read() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Write replaces the whole document and makes sure the relational schema
// exists.
func (s *Store) Write(doc Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(doc)
}

// Update sets one key with a read-modify-write under the lock.
func (s *Store) Update(key string, value interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.readLocked()
	doc[key] = value
	return s.writeLocked(doc)
}

// Get returns the value for key, or def when absent.
func (s *Store) Get(key string, def interface{}) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.readLocked()[key]; ok {
		return v
	}
	return def
}

// RememberNickname stores phone under the lower-cased name in nicknames.
func (s *Store) RememberNickname(name, phone string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.readLocked()
	nicknames, ok := doc[KeyNicknames].(map[string]interface{})
	if !ok {
		nicknames = map[string]interface{}{}
	}
	nicknames[name] = phone
	doc[KeyNicknames] = nicknames
	return s.writeLocked(doc)
}

// ResolveContact maps a spoken name to a phone number using nicknames
// first and then the contacts table. Unknown names come back unchanged.
func (s *Store) ResolveContact(ctx context.Context, name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return name
	}
	if nicknames, ok := s.Get(KeyNicknames, nil).(map[string]interface{}); ok {
		if phone, ok := nicknames[key].(string); ok && phone != "" {
			return phone
		}
	}
	if s.log != nil {
		if phone, found, err := s.log.LookupContact(ctx, key); err == nil && found {
			return phone
		}
	}
	return name
}

func (s *Store) readLocked() Document {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return DefaultDocument()
	}
	if err != nil {
		s.logger.Error("memory read failed", map[string]interface{}{"path": s.path, "error": err.Error()})
		return DefaultDocument()
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		s.logger.Error("memory document is not a JSON object", map[string]interface{}{"path": s.path})
		return DefaultDocument()
	}
	return doc
}

func (s *Store) writeLocked(doc Document) bool {
	if doc == nil {
		doc = Document{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.logger.Error("memory encode failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		s.logger.Error("memory write failed", map[string]interface{}{
			"error": apperrors.NewStoreFailedError("write", err).Error(),
		})
		return false
	}

	if s.log != nil && !s.schemaReady.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.log.EnsureSchema(ctx); err != nil {
			s.logger.Warn("relational schema not ready", map[string]interface{}{"error": err.Error()})
		} else {
			s.schemaReady.Store(true)
		}
	}
	return true
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".memory-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
