package queue

import (
	"fmt"
	"strings"

	"ytsubs/internal/model"
)

// formatEntryLine renders one queue entry as a single list line
func formatEntryLine(entry *model.QueueEntry) string {
	var line strings.Builder

	line.WriteString(fmt.Sprintf("[%s] %s", entry.Status, entry.VideoID))
	if entry.Title != "" {
		line.WriteString("  " + truncateString(entry.Title, 60))
	}
	if entry.TotalBatches > 0 {
		line.WriteString(fmt.Sprintf("  (%d/%d windows)", entry.CompletedBatches, entry.TotalBatches))
	}
	if entry.ErrorMessage != "" {
		line.WriteString("  error: " + truncateString(entry.ErrorMessage, 80))
	}
	line.WriteString("\n  id: " + entry.ID)
	line.WriteString("  added: " + entry.AddedAt.Format("2006-01-02 15:04:05"))

	return line.String()
}

// formatCounts renders the per-status entry counts
func formatCounts(counts model.QueueCounts) string {
	var out strings.Builder

	out.WriteString(fmt.Sprintf("pending:     %d\n", counts.Pending))
	out.WriteString(fmt.Sprintf("translating: %d\n", counts.Translating))
	out.WriteString(fmt.Sprintf("paused:      %d\n", counts.Paused))
	out.WriteString(fmt.Sprintf("completed:   %d\n", counts.Completed))
	out.WriteString(fmt.Sprintf("error:       %d\n", counts.Error))
	out.WriteString(fmt.Sprintf("total:       %d\n", counts.Total()))

	return out.String()
}

// formatProgressLine renders a job snapshot as a single progress line
func formatProgressLine(job model.TranslationJob) string {
	switch job.Status {
	case model.JobStatusCompleted:
		return fmt.Sprintf("Completed %s (%d windows)", job.VideoID, job.Progress.TotalBatches)
	case model.JobStatusError:
		return fmt.Sprintf("Failed %s: %s", job.VideoID, job.ErrorMessage)
	default:
		return fmt.Sprintf("Translating %s: %d/%d windows",
			job.VideoID, job.Progress.CompletedBatches, job.Progress.TotalBatches)
	}
}

// truncateString shortens s to maxLen runes with an ellipsis
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
