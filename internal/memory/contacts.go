// internal/memory/contacts.go
package memory

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/validation"
)

func contactCacheKey(name string) string {
	return "contact:" + strings.ToLower(strings.TrimSpace(name))
}

// AddContact stores a contact and drops any cached lookup for the name.
func (l *Log) AddContact(ctx context.Context, name, phone string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.NewInvalidArgumentError("name", "empty")
	}
	if !validation.ValidatePhone(phone) {
		return 0, apperrors.NewInvalidArgumentError("phone", "not a phone number")
	}

	var id int64
	err := l.db.QueryRow(ctx,
		`INSERT INTO contacts (name, phone) VALUES (?, ?) RETURNING id`,
		name, validation.NormalizePhone(phone),
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewStoreFailedError("add_contact", err)
	}

	if l.cache != nil {
		if err := l.cache.Del(ctx, contactCacheKey(name)); err != nil {
			l.logger.Debug("contact cache invalidate failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return id, nil
}

// LookupContact returns the newest phone stored for name (case-insensitive).
// The redis cache, when configured, is consulted first and filled on a miss.
func (l *Log) LookupContact(ctx context.Context, name string) (string, bool, error) {
	key := contactCacheKey(name)
	if l.cache != nil {
		if phone, err := l.cache.Get(ctx, key); err == nil && phone != "" {
			return phone, true, nil
		}
	}

	var phone string
	err := l.db.QueryRow(ctx,
		`SELECT phone FROM contacts WHERE lower(name) = ? ORDER BY id DESC LIMIT 1`,
		strings.ToLower(strings.TrimSpace(name)),
	).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStoreFailedError("lookup_contact", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, phone, l.cacheTTL); err != nil {
			l.logger.Debug("contact cache fill failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return phone, true, nil
}
