package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pocket-chat-server/internal/config"
	"pocket-chat-server/internal/database"
	"pocket-chat-server/internal/lock"
	"pocket-chat-server/internal/repository"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "chat.db"),
	}, false)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	_, err = database.Migrate(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return repository.NewStore(db)
}

// stepClock 每次调用前进一秒
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestConversationService(t *testing.T) (*ConversationService, *repository.Store) {
	t.Helper()
	store := newTestStore(t)
	svc := NewConversationService(store, lock.NewLocal())
	svc.SetClock(newStepClock().Now)
	return svc, store
}
