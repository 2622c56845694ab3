package chart

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/pkg/utils"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoManagers is returned when there is nothing to plot.
var ErrNoManagers = errors.New("no managers to chart")

const (
	// maxBars caps the chart to the best ranked managers.
	maxBars = 15
	// labelLength is the longest manager name printed under a bar.
	labelLength = 12

	chartHeight   = 512
	barWidth      = 48
	barSpacing    = 24
	titleFontSize = 14.0
	paddingTop    = 48
	paddingSide   = 24
	paddingBottom = 24
)

// LeaderboardBuilder renders completion percentages as a bar chart.
type LeaderboardBuilder struct {
	stats []*types.ManagerStats
}

// NewLeaderboardBuilder creates a builder for ranked manager statistics.
func NewLeaderboardBuilder(stats []*types.ManagerStats) *LeaderboardBuilder {
	if len(stats) > maxBars {
		stats = stats[:maxBars]
	}
	return &LeaderboardBuilder{stats: stats}
}

// Build renders the chart as PNG.
func (b *LeaderboardBuilder) Build() (*bytes.Buffer, error) {
	if len(b.stats) == 0 {
		return nil, ErrNoManagers
	}

	bars := make([]chart.Value, 0, len(b.stats))
	for _, stat := range b.stats {
		bars = append(bars, chart.Value{
			Label: utils.Truncate(stat.Name, labelLength),
			Value: stat.Percentage,
			Style: chart.Style{
				FillColor:   barColor(stat.Percentage),
				StrokeColor: barColor(stat.Percentage),
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title: "Task completion, %",
		TitleStyle: chart.Style{
			FontSize: titleFontSize,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    paddingTop,
				Left:   paddingSide,
				Right:  paddingSide,
				Bottom: paddingBottom,
			},
		},
		Height:     chartHeight,
		Width:      paddingSide*2 + len(bars)*(barWidth+barSpacing) + 80,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("failed to render leaderboard chart: %w", err)
	}

	return buf, nil
}

// barColor grades a bar from red to green by completion.
func barColor(percentage float64) drawing.Color {
	switch {
	case percentage >= 80:
		return drawing.ColorFromHex("2e7d32")
	case percentage >= 50:
		return drawing.ColorFromHex("f9a825")
	default:
		return drawing.ColorFromHex("c62828")
	}
}
