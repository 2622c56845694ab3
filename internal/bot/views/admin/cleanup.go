package admin

import (
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// CleanupNothing explains why a manual cleanup found nothing to archive.
func CleanupNothing(summary *types.CompletedSummary, retentionDays int, now time.Time) *telegram.Response {
	if summary == nil || summary.Count == 0 || summary.OldestAt == nil {
		return menu.WithMenu("✅ There are no completed tasks to clean up.", true)
	}

	return menu.WithMenu(fmt.Sprintf(
		"✅ No completed tasks older than %d days to clean up.\n\n"+
			"📊 Completed tasks stored: %d\n"+
			"📅 The oldest was completed %d days ago",
		retentionDays,
		summary.Count,
		utils.DaysSince(*summary.OldestAt, now),
	), true)
}

// CleanupDone reports an archive-and-purge run.
func CleanupDone(result *types.CleanupResult) *telegram.Response {
	return menu.WithMenu(fmt.Sprintf(
		"✅ Cleanup finished!\n\n🗑️ Tasks deleted: %d\n\n💾 Data saved to:\n<code>%s</code>",
		result.Deleted,
		telegram.Escape(result.ArchivePath),
	), true)
}
