package optimize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "desk-assistant/internal/common/errors"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/safety"
)

func TestRun_RefusedWithoutConfirmation(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.tmp")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	for _, g := range []*safety.Gate{
		safety.New(true, true, logger.NewNoOpLogger()),
		safety.New(false, false, logger.NewNoOpLogger()),
	} {
		h := NewHandler(&Config{Dirs: []string{dir}, MaxAge: time.Hour}, g, logger.NewNoOpLogger())
		_, err := h.Run(context.Background())
		assert.True(t, apperrors.IsSafetyRefusal(err))
	}
	assert.FileExists(t, old)
}

func TestRun_RemovesOnlyStaleFiles(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "nested", "old.tmp")
	fresh := filepath.Join(dir, "fresh.tmp")
	require.NoError(t, os.MkdirAll(filepath.Dir(old), 0o755))
	require.NoError(t, os.WriteFile(old, []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	past := time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	gate := safety.New(false, true, logger.NewNoOpLogger())
	h := NewHandler(&Config{Dirs: []string{dir}, MaxAge: 24 * time.Hour}, gate, logger.NewTestLogger(t))
	rep, err := h.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Report{Removed: 1, Freed: 5}, rep)
	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
}
