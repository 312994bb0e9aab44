// Package tui renders progress lines, the single-file spinner, and the
// final summary table.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"nefconv/internal/batch"
)

// RenderMessage formats one terminal progress report as a styled line,
// with an estimate line below it while jobs remain.
func RenderMessage(m batch.Message) string {
	prefix := styleDim.Render(fmt.Sprintf("[%d/%d]", m.Completed, m.Total))
	name := styleName.Render(filepath.Base(m.Input))

	var line string
	switch m.Outcome {
	case batch.OutcomeDone:
		line = fmt.Sprintf("%s %s %s %s",
			prefix, name,
			styleFormats.Render("-> "+m.Detail+"..."),
			styleSuccess.Render("Done ("+FormatDuration(m.Elapsed)+")"))
	case batch.OutcomeSkipped:
		line = fmt.Sprintf("%s %s %s", prefix, name, styleFormats.Render(m.Detail))
	case batch.OutcomeFailed:
		line = fmt.Sprintf("%s %s %s", prefix, name, styleError.Render("Failed: "+m.Detail))
	default:
		line = fmt.Sprintf("%s %s %s", prefix, name, styleDim.Render("Dropped ("+m.Detail+")"))
	}

	if m.Remaining > 0 {
		line += "\n" + styleDim.Render("    est. "+FormatDuration(m.Remaining)+" left")
	}
	return line
}

// FormatDuration prints whole seconds, switching to minutes past one
// minute.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// RenderSummary draws the end-of-batch table.
func RenderSummary(sum batch.Summary) string {
	rows := []struct {
		label string
		value string
	}{
		{"Converted", fmt.Sprintf("%d", sum.Done)},
		{"Skipped", fmt.Sprintf("%d", sum.Skipped)},
		{"Failed", fmt.Sprintf("%d", sum.Failed)},
	}
	if sum.Dropped > 0 {
		rows = append(rows, struct{ label, value string }{"Dropped", fmt.Sprintf("%d", sum.Dropped)})
	}
	rows = append(rows, struct{ label, value string }{"Elapsed", FormatDuration(sum.Elapsed)})

	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.label) > labelWidth {
			labelWidth = len(row.label)
		}
		if len(row.value) > valueWidth {
			valueWidth = len(row.value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s | %s",
			styleLabel.Render(padRight(row.label, labelWidth)),
			styleValue.Render(padRight(row.value, valueWidth))))
	}
	lines = append(lines, hline)

	if sum.Interrupted {
		lines = append(lines, styleError.Render("Interrupted, queued files were not converted"))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
