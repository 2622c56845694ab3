package chart_test

import (
	"bytes"
	"testing"

	"github.com/robalyx/overseer/internal/bot/views/chart"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardBuild(t *testing.T) {
	t.Parallel()

	stats := []*types.ManagerStats{
		{Name: "Boris", Completed: 2, Total: 2, Percentage: 100},
		{Name: "Vera with a very long name", Completed: 3, Total: 5, Percentage: 60},
		{Name: "Anna", Total: 1, Percentage: 0},
	}

	buf, err := chart.NewLeaderboardBuilder(stats).Build()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestLeaderboardBuildEmpty(t *testing.T) {
	t.Parallel()

	_, err := chart.NewLeaderboardBuilder(nil).Build()
	require.ErrorIs(t, err, chart.ErrNoManagers)
}
