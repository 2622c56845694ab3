package session

// Conversation states.
const (
	StateAwaitingTaskText    State = "admin:task_text"
	StateAwaitingDeadline    State = "admin:task_deadline"
	StateAwaitingReason      State = "manager:reason"
	StateAwaitingNewDeadline State = "manager:new_deadline"
)

//nolint:gochecknoglobals // typed keys are shared by handlers
var (
	// DraftManagerID is the user id of the manager picked for a new task.
	DraftManagerID = NewKey[int64]("draft_manager_id")
	// DraftText is the body of the task being created.
	DraftText = NewKey[string]("draft_text")

	// RescheduleTaskID is the task being marked as not completed.
	RescheduleTaskID = NewKey[int64]("reschedule_task_id")
	// RescheduleReason is the reason given for the missed deadline.
	RescheduleReason = NewKey[string]("reschedule_reason")

	// TasksPage is the manager's current page in the task list.
	TasksPage = NewKey[int]("tasks_page")
)
