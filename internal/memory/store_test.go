package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desk-assistant/internal/common/logger"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory", "memory.json")
	return NewStore(path, nil, logger.NewTestLogger(t)), path
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.Write(Document{"k": "v"}))
	assert.Equal(t, Document{"k": "v"}, s.Read())
}

func TestStore_DefaultsWhenMissing(t *testing.T) {
	s, path := newTestStore(t)

	doc := s.Read()
	assert.Equal(t, "desktop", doc[KeyPreferredChannel])
	assert.Equal(t, "friendly", doc[KeyLastTone])
	assert.Equal(t, map[string]interface{}{}, doc[KeyNicknames])

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Read must not create the file")
}

func TestStore_CorruptFileFallsBack(t *testing.T) {
	s, path := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

	assert.Equal(t, DefaultDocument(), s.Read())
	assert.Equal(t, "fallback", s.Get("missing", "fallback"))
}

func TestStore_WriteOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.Write(Document{"a": 1.0, "b": 2.0}))
	require.True(t, s.Write(Document{"c": 3.0}))
	assert.Equal(t, Document{"c": 3.0}, s.Read())
}

func TestStore_UpdateAndGet(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.Update(KeyLastTone, "formal"))
	assert.Equal(t, "formal", s.Get(KeyLastTone, nil))
	assert.Equal(t, "desktop", s.Get(KeyPreferredChannel, nil))
	assert.Nil(t, s.Get("nope", nil))
}

func TestStore_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewStore(filepath.Join(blocker, "memory.json"), nil, logger.NewNoOpLogger())
	assert.False(t, s.Write(Document{"k": "v"}))
	assert.False(t, s.Update("k", "v"))
}

func TestStore_RememberNicknameAndResolve(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.RememberNickname("Ali", "+923001234567"))
	assert.False(t, s.RememberNickname("  ", "123"))

	nick, ok := s.Get(KeyNicknames, nil).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "+923001234567", nick["ali"])

	ctx := context.Background()
	assert.Equal(t, "+923001234567", s.ResolveContact(ctx, "ALI"))
	assert.Equal(t, "zara", s.ResolveContact(ctx, "zara"))
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.True(t, s.Update(fmt.Sprintf("key%d", i), float64(i)))
		}(i)
	}
	wg.Wait()

	doc := s.Read()
	for i := 0; i < 20; i++ {
		assert.Equal(t, float64(i), doc[fmt.Sprintf("key%d", i)])
	}
}
