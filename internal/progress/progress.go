// Package progress formats progress lines for the CLI's scan, triage and
// execution phases.
package progress

import (
	"fmt"
	"time"
)

// FormatScan renders one scan progress line
func FormatScan(current, total int, path string) string {
	pct := 0.0
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}
	return fmt.Sprintf("Scanning [%d/%d] %.0f%% %s", current, total, pct, path)
}

// FormatBatch renders one triage batch progress line
func FormatBatch(batch, totalBatches, suggestions int) string {
	return fmt.Sprintf("Batch %d/%d analyzed: %d suggestions", batch, totalBatches, suggestions)
}

// FormatOperation renders one execution progress line
func FormatOperation(index, total int, action, path string) string {
	return fmt.Sprintf("[%d/%d] %s %s", index, total, action, path)
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
