package enum

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusActive indicates a task waiting for its manager.
	TaskStatusActive TaskStatus = "active"
	// TaskStatusCompleted indicates a task the manager marked as done.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusNotCompleted is reserved for tasks marked as missed. The reschedule
	// flow returns tasks to active, so this status is never persisted by the bot.
	TaskStatusNotCompleted TaskStatus = "not_completed"
)

// String returns the stored representation.
func (s TaskStatus) String() string {
	return string(s)
}

// Glyph returns the marker shown next to a task in listings.
func (s TaskStatus) Glyph() string {
	switch s {
	case TaskStatusActive:
		return "🟡"
	case TaskStatusCompleted:
		return "✅"
	case TaskStatusNotCompleted:
		return "❌"
	default:
		return "⚪"
	}
}
