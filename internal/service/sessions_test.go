package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoplay/convoplay/internal/domain"
	"github.com/convoplay/convoplay/internal/provider"
)

func newTestStore() *SessionStore {
	models := NewModelManager(map[domain.ProviderName]provider.Client{
		domain.ProviderOpenRouter: &fakeClient{},
		domain.ProviderGoogle:     &fakeClient{},
	})
	return NewSessionStore(models, nil, nil)
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := newTestStore()

	conv := store.Create()
	require.NotNil(t, conv)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(conv.ID())
	require.NoError(t, err)
	assert.Same(t, conv, got)

	cfg := got.Config()
	assert.Equal(t, "llama", cfg.ModelKey)
	assert.Equal(t, "assistant", cfg.PersonaKey)
	assert.Equal(t, 10, cfg.MemoryWindow)
}

func TestSessionStoreGetUnknown(t *testing.T) {
	store := newTestStore()
	_, err := store.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStoreCleanup(t *testing.T) {
	store := newTestStore()
	stale := store.Create()
	time.Sleep(10 * time.Millisecond)

	removed := store.Cleanup(time.Millisecond)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, store.Len())

	_, err := store.Get(stale.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStoreCleanupKeepsActive(t *testing.T) {
	store := newTestStore()
	conv := store.Create()

	removed := store.Cleanup(time.Hour)
	assert.Equal(t, 0, removed)

	_, err := store.Get(conv.ID())
	assert.NoError(t, err)
}
