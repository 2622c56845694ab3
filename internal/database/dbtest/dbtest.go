// Package dbtest provides in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// NewClient opens a migrated in-memory SQLite database private to the test.
func NewClient(t *testing.T) database.Client {
	t.Helper()

	cfg := &config.Database{
		Driver: config.DriverSQLite,
		Path: "file:" + uuid.NewString() +
			"?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}

	client, err := database.NewConnection(context.Background(), cfg, zaptest.NewLogger(t), true)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// CreateUser registers a user with the given role.
func CreateUser(t *testing.T, client database.Client, telegramID int64, firstName string, role enum.Role) *types.User {
	t.Helper()

	user, err := client.Model().User().Upsert(context.Background(), types.Identity{
		TelegramID: telegramID,
		FirstName:  firstName,
	}, role)
	require.NoError(t, err)

	return user
}
