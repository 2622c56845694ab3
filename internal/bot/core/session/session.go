package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// State names a step of a multi-message conversation. The zero value means
// no conversation is in progress.
type State string

// StateNone is the idle state.
const StateNone State = ""

// Session holds the conversation state of one user in one chat.
type Session struct {
	manager  *Manager
	key      string
	state    State
	data     map[string]any
	modified bool
	mu       sync.RWMutex
}

// snapshot is the serialized form of a session.
type snapshot struct {
	State State          `json:"state"`
	Data  map[string]any `json:"data"`
}

// State returns the current conversation state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// SetState moves the conversation to state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.modified = true
}

// Reset ends the conversation and forgets all stored values.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateNone
	s.data = make(map[string]any)
	s.modified = true
}

// Save persists the session when it changed, or removes it once idle and empty.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modified {
		return nil
	}

	if s.state == StateNone && len(s.data) == 0 {
		if err := s.manager.store.Delete(ctx, s.key); err != nil {
			return err
		}
		s.modified = false
		return nil
	}

	data, err := sonic.Marshal(snapshot{State: s.state, Data: s.data})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.manager.store.Save(ctx, s.key, data, s.manager.ttl); err != nil {
		return err
	}

	s.modified = false

	return nil
}

// getInterface decodes the stored value for key into v. Values loaded from
// storage are generic JSON, so they are round-tripped into the target type.
func (s *Session) getInterface(key string, v any) bool {
	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()

	if !ok || value == nil {
		return false
	}

	raw, err := sonic.Marshal(value)
	if err != nil {
		s.manager.logger.Warn("Failed to marshal session value")
		return false
	}

	if err := sonic.Unmarshal(raw, v); err != nil {
		s.manager.logger.Warn("Failed to decode session value")
		return false
	}

	return true
}

func (s *Session) set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	s.modified = true
}

func (s *Session) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.modified = true
	}
}
