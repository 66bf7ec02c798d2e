package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"reelvault/internal/naming"
	"reelvault/internal/queue"
)

func buildQueueListRows(items []*queue.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			naming.DisplayTitle(item.CandidateName),
			naming.DisplayTitle(item.Company),
			string(item.Status),
			formatProgress(item),
			humanize.Time(item.CreatedAt),
		})
	}
	return rows
}

func formatProgress(item *queue.Item) string {
	switch item.Status {
	case queue.StatusCompleted:
		return "100%"
	case queue.StatusFailed:
		message := strings.TrimSpace(item.ErrorMessage)
		if message == "" {
			return "failed"
		}
		return truncate(message, 40)
	case queue.StatusWaiting:
		return "-"
	}
	step := strings.TrimSpace(item.CurrentStep)
	if step == "" {
		return fmt.Sprintf("%.0f%%", item.ProgressPercent)
	}
	return fmt.Sprintf("%.0f%% %s", item.ProgressPercent, step)
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}
