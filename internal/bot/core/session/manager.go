package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// SessionPrefix is the key prefix for stored conversations.
const SessionPrefix = "session:"

var ErrFailedToParseSession = errors.New("failed to parse session data")

// Manager loads and stores per-user conversation sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a session manager. Sessions expire after ttl of inactivity.
func NewManager(store Store, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: logger.Named("session"),
	}
}

// StorageKey returns the storage key of a user's session in a chat.
func StorageKey(chatID, userID int64) string {
	return fmt.Sprintf("%s%d:%d", SessionPrefix, chatID, userID)
}

// Get loads the session of a user in a chat, starting an empty one when none is stored.
// Undecodable data is discarded so a corrupt session never blocks the user.
func (m *Manager) Get(ctx context.Context, chatID, userID int64) (*Session, error) {
	key := StorageKey(chatID, userID)

	session := &Session{
		manager: m,
		key:     key,
		data:    make(map[string]any),
	}

	raw, err := m.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return session, nil
	}

	var snap snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		m.logger.Warn("Discarding unreadable session",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %w", ErrFailedToParseSession, err)))
		session.modified = true
		return session, nil
	}

	session.state = snap.State
	if snap.Data != nil {
		session.data = snap.Data
	}

	return session, nil
}
