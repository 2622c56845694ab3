package redis

import (
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/redis/rueidis"
	"github.com/robalyx/overseer/internal/setup/config"
	"go.uber.org/zap"
)

// Logical databases on the configured server.
const (
	SessionDBIndex      = 3 // conversation state
	WorkerStatusDBIndex = 4 // scheduler job statuses
)

// ErrDisabled is returned when a client is requested but no host is configured.
var ErrDisabled = errors.New("redis is not configured")

// Manager hands out one rueidis client per logical database, connecting on
// first use. A manager without a host is disabled and callers fall back to
// in-process state.
type Manager struct {
	cfg     *config.Redis
	logger  *zap.Logger
	mu      sync.Mutex
	clients map[int]rueidis.Client
}

// NewManager creates a manager for the configured server.
func NewManager(cfg *config.Redis, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  logger.Named("redis"),
		clients: make(map[int]rueidis.Client),
	}
}

// Enabled reports whether a Redis server is configured.
func (m *Manager) Enabled() bool {
	return m != nil && m.cfg != nil && m.cfg.Host != ""
}

// GetClient returns the client for a logical database.
func (m *Manager) GetClient(dbIndex int) (rueidis.Client, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if client, ok := m.clients[dbIndex]; ok {
		return client, nil
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))},
		Username:     m.cfg.Username,
		Password:     m.cfg.Password,
		SelectDB:     dbIndex,
		ClientName:   "overseer",
		DisableCache: m.cfg.DisableCache,
	})
	if err != nil {
		return nil, &ConnectError{DB: dbIndex, Err: err}
	}

	m.clients[dbIndex] = client
	m.logger.Info("Connected to Redis", zap.Int("db", dbIndex))

	return client, nil
}

// Close closes every client. It is safe on a nil or disabled manager.
func (m *Manager) Close() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for dbIndex, client := range m.clients {
		client.Close()
		m.logger.Debug("Closed Redis client", zap.Int("db", dbIndex))
	}

	clear(m.clients)
}

// ConnectError reports a failure to open a client for a logical database.
type ConnectError struct {
	DB  int
	Err error
}

func (e *ConnectError) Error() string {
	return "failed to create Redis client for db " + strconv.Itoa(e.DB) + ": " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
