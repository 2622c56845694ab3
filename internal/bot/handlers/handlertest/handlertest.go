// Package handlertest provides fakes for exercising bot layouts in tests.
package handlertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/database/dbtest"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/robalyx/overseer/internal/telegram"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// AdminID is the administrator's Telegram id in test apps.
const AdminID int64 = 1000

// Sent is a message delivered through the fake messenger.
type Sent struct {
	ChatID    int64
	MessageID int
	Response  *telegram.Response
}

// Upload is a photo or document delivered through the fake messenger.
type Upload struct {
	ChatID  int64
	Name    string
	Size    int
	Caption string
}

// Messenger records everything sent through it.
type Messenger struct {
	mu sync.Mutex

	Sent      []Sent
	Edited    []Sent
	replies   []*telegram.Response
	Answered  []string
	Photos    []Upload
	Documents []Upload

	// FailChats makes Send fail for the listed chats.
	FailChats map[int64]error
	// Count is returned by MemberCount; CountErr takes precedence.
	Count    int
	CountErr error
}

// NewMessenger creates an empty fake messenger.
func NewMessenger() *Messenger {
	return &Messenger{FailChats: make(map[int64]error)}
}

func (m *Messenger) Send(_ context.Context, chatID int64, resp *telegram.Response) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailChats[chatID]; err != nil {
		return 0, err
	}

	m.Sent = append(m.Sent, Sent{ChatID: chatID, MessageID: len(m.Sent) + 1, Response: resp})
	m.replies = append(m.replies, resp)
	return len(m.Sent), nil
}

func (m *Messenger) Edit(_ context.Context, chatID int64, messageID int, resp *telegram.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Edited = append(m.Edited, Sent{ChatID: chatID, MessageID: messageID, Response: resp})
	m.replies = append(m.replies, resp)
	return nil
}

func (m *Messenger) AnswerCallback(_ context.Context, callbackID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Answered = append(m.Answered, callbackID)
	return nil
}

func (m *Messenger) SendPhoto(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Photos = append(m.Photos, Upload{ChatID: chatID, Name: name, Size: len(data), Caption: caption})
	return nil
}

func (m *Messenger) SendDocument(_ context.Context, chatID int64, path, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Documents = append(m.Documents, Upload{ChatID: chatID, Name: path, Caption: caption})
	return nil
}

func (m *Messenger) MemberCount(context.Context, int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Count, m.CountErr
}

// Last returns the latest reply, whether sent or edited.
func (m *Messenger) Last(t *testing.T) *telegram.Response {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.replies, "no reply was delivered")
	return m.replies[len(m.replies)-1]
}

// SentTo returns the messages sent to chatID.
func (m *Messenger) SentTo(chatID int64) []*telegram.Response {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*telegram.Response
	for _, sent := range m.Sent {
		if sent.ChatID == chatID {
			out = append(out, sent.Response)
		}
	}
	return out
}

// Exporter records exported tasks and returns a fixed path or error.
type Exporter struct {
	Path     string
	Err      error
	Exported int
}

func (e *Exporter) Export(_ context.Context, tasks []*types.Task) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}

	e.Exported += len(tasks)
	return e.Path, nil
}

// NewApp creates an application backed by an in-memory database.
func NewApp(t *testing.T) (*setup.App, *Exporter) {
	t.Helper()

	exporter := &Exporter{Path: "exports/completed_tasks.txt"}

	cfg := &config.Config{
		Bot: config.BotConfig{
			AdminTelegramID: AdminID,
			Timezone:        "UTC",
		},
		Worker: config.WorkerConfig{
			RetentionDays:       7,
			CleanupIntervalDays: 7,
			ReminderConcurrency: 2,
		},
	}

	return &setup.App{
		Config:   cfg,
		Logger:   zaptest.NewLogger(t),
		DB:       dbtest.NewClient(t),
		Exporter: exporter,
	}, exporter
}

// NewSession creates an empty in-memory conversation for user.
func NewSession(t *testing.T, user *types.User) *session.Session {
	t.Helper()

	manager := session.NewManager(session.NewMemoryStore(), time.Hour, zaptest.NewLogger(t))

	s, err := manager.Get(context.Background(), user.TelegramID, user.TelegramID)
	require.NoError(t, err)

	return s
}

// Text builds the context of a private text message from user.
func Text(user *types.User, s *session.Session, text string) *handlers.Context {
	hc := newContext(user, s)
	hc.Message = &telegram.Message{ChatID: user.TelegramID, Private: true, Text: text}

	return hc
}

// Command builds the context of a private slash command from user.
func Command(user *types.User, s *session.Session, command string) *handlers.Context {
	hc := Text(user, s, "/"+command)
	hc.Message.Command = command

	return hc
}

// Callback builds the context of a button press by user on message 1.
func Callback(user *types.User, s *session.Session, data string) *handlers.Context {
	hc := newContext(user, s)
	hc.Callback = &telegram.Callback{ID: "cb", ChatID: user.TelegramID, MessageID: 1, Data: data}

	return hc
}

func newContext(user *types.User, s *session.Session) *handlers.Context {
	return &handlers.Context{
		User:    user,
		IsAdmin: user.TelegramID == AdminID,
		ChatID:  user.TelegramID,
		Session: s,
	}
}
