package manager_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/views/manager"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []*types.Task {
	deadline := time.Date(2025, 3, 20, 23, 59, 59, 0, time.UTC)

	tasks := make([]*types.Task, n)
	for i := range n {
		tasks[i] = &types.Task{
			ID:       int64(i + 1),
			Text:     fmt.Sprintf("Call the supplier about order %d and confirm delivery", i+1),
			Deadline: deadline,
		}
	}

	return tasks
}

func callbackData(resp [][]string) []string {
	var out []string
	for _, row := range resp {
		out = append(out, row...)
	}
	return out
}

func TestTaskListPagination(t *testing.T) {
	t.Parallel()

	tasks := makeTasks(23)

	tests := []struct {
		name      string
		page      int
		wantFirst string
		wantPrev  bool
		wantNext  bool
		wantTasks int
	}{
		{name: "first page", page: 0, wantFirst: "task_1", wantNext: true, wantTasks: 10},
		{name: "middle page", page: 1, wantFirst: "task_11", wantPrev: true, wantNext: true, wantTasks: 10},
		{name: "last page", page: 2, wantFirst: "task_21", wantPrev: true, wantTasks: 3},
		{name: "page past the end is clamped", page: 9, wantFirst: "task_21", wantPrev: true, wantTasks: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := manager.NewTaskListBuilder(tasks, tt.page).Build()
			require.NotEmpty(t, resp.Keyboard)

			var rows [][]string
			for _, row := range resp.Keyboard {
				var data []string
				for _, b := range row {
					data = append(data, b.Data)
				}
				rows = append(rows, data)
			}

			assert.Equal(t, tt.wantFirst, rows[0][0])

			all := strings.Join(callbackData(rows), " ")
			taskButtons := 0
			for _, d := range callbackData(rows) {
				if strings.HasPrefix(d, constants.TaskPrefix) {
					taskButtons++
				}
			}

			assert.Equal(t, tt.wantTasks, taskButtons)
			assert.Equal(t, tt.wantPrev, strings.Contains(all, fmt.Sprintf("tasks_page_%d", manager.ClampPage(tt.page, 23)-1)))
			assert.Equal(t, tt.wantNext, strings.Contains(all, fmt.Sprintf("tasks_page_%d", manager.ClampPage(tt.page, 23)+1)))
			assert.Contains(t, all, constants.BackToMenu)
			assert.Contains(t, resp.Text, "Your active tasks (23)")
		})
	}
}

func TestTaskListButtonLabels(t *testing.T) {
	t.Parallel()

	resp := manager.NewTaskListBuilder(makeTasks(1), 0).Build()
	assert.Equal(t, "📌 Call the supplier about order... (until 20.03.2025)", resp.Keyboard[0][0].Text)

	tasks := makeTasks(1)
	tasks[0].Text = "Buy paper\n\nand  toner"
	resp = manager.NewTaskListBuilder(tasks, 0).Build()
	assert.Equal(t, "📌 Buy paper and toner (until 20.03.2025)", resp.Keyboard[0][0].Text)
	assert.Contains(t, resp.Text, "1. Buy paper and toner (until 20.03.2025)")
}

func TestTaskListEmpty(t *testing.T) {
	t.Parallel()

	resp := manager.NewTaskListBuilder(nil, 0).Build()
	assert.Contains(t, resp.Text, "no active tasks")
}

func TestClampPage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, manager.ClampPage(-1, 5))
	assert.Equal(t, 0, manager.ClampPage(3, 0))
	assert.Equal(t, 1, manager.ClampPage(1, 20))
	assert.Equal(t, 1, manager.ClampPage(2, 20))
	assert.Equal(t, 2, manager.ClampPage(2, 21))
}

func TestReminder(t *testing.T) {
	t.Parallel()

	task := &types.Task{ID: 9, Text: "Send <report>", Deadline: time.Date(2025, 3, 20, 23, 59, 59, 0, time.UTC)}
	resp := manager.Reminder(task)

	assert.Contains(t, resp.Text, "Send &lt;report&gt;")
	assert.Contains(t, resp.Text, "20.03.2025 23:59")
	assert.Equal(t, "task_complete_9", resp.Keyboard[0][0].Data)
	assert.Equal(t, "task_not_complete_9", resp.Keyboard[0][1].Data)
}
