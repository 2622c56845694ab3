package constants

// Commands.
const (
	StartCommand  = "start"
	CancelCommand = "cancel"
)

// Callback data sent by inline buttons.
const (
	BackToMenu = "back_to_menu"

	AdminAddTask       = "admin_add_task"
	AdminAllTasks      = "admin_all_tasks"
	AdminGroupAnalysis = "admin_group_analysis"
	AdminRating        = "admin_rating"
	AdminRatingChart   = "admin_rating_chart"
	AdminCleanup       = "admin_cleanup"
	AdminAllEmployees  = "admin_all_employees"
	AdminCancel        = "admin_cancel"

	// SelectManagerPrefix is followed by the manager's user id.
	SelectManagerPrefix = "select_manager_"

	ManagerMyTasks = "manager_my_tasks"

	// TaskCompletePrefix and TaskNotCompletePrefix share TaskPrefix, so they
	// must be matched before it.
	TaskCompletePrefix    = "task_complete_"
	TaskNotCompletePrefix = "task_not_complete_"
	TaskPrefix            = "task_"
	TasksPagePrefix       = "tasks_page_"
)

// Listing limits.
const (
	AllTasksLimit      = 50
	AllTasksTextLength = 60
	TasksPerPage       = 10
	TaskButtonLength   = 30
	GroupNamesShown    = 5
)

// DateLayout is the day-month-year format used for input and display.
const DateLayout = "02.01.2006"

// DateTimeLayout is used for reminder and analytics timestamps.
const DateTimeLayout = "02.01.2006 15:04"
