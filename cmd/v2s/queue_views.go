package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"v2s/internal/api"
	"v2s/internal/queue"
)

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

// buildJobRows renders jobs in queue order, one row per job. Position is
// shown one-based to match `v2s queue move` arguments.
func buildJobRows(jobs []api.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.Position+1),
			shortJobID(job.ID),
			job.DisplayName,
			formatStatusLabel(job.Status),
			formatProgress(job),
			formatDisplayTime(job.EnqueuedAt),
		})
	}
	return rows
}

func shortJobID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatProgress(job api.Job) string {
	switch queue.Status(job.Status) {
	case queue.StatusProcessing:
		return fmt.Sprintf("%.0f%%", job.ProgressPercent)
	case queue.StatusDone:
		return "100%"
	default:
		return "-"
	}
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}
