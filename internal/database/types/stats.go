package types

import (
	"strconv"
	"time"
)

// ManagerStats aggregates task outcomes for one manager.
type ManagerStats struct {
	UserID       int64   `json:"userId"`
	TelegramID   int64   `json:"telegramId"`
	Name         string  `json:"name"`
	Completed    int     `json:"completed"`
	NotCompleted int     `json:"notCompleted"`
	Active       int     `json:"active"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
}

// CompletedSummary describes completed tasks still held in storage.
type CompletedSummary struct {
	Count    int
	OldestAt *time.Time
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
