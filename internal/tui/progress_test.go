package tui

import (
	"strings"
	"testing"
	"time"

	"nefconv/internal/batch"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{800 * time.Millisecond, "1s"},
		{4 * time.Second, "4s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m 0s"},
		{154 * time.Second, "2m 34s"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRenderMessageDone(t *testing.T) {
	out := RenderMessage(batch.Message{
		Input:     "/photos/shot.nef",
		Outcome:   batch.OutcomeDone,
		Detail:    "png+jpeg",
		Elapsed:   4 * time.Second,
		Remaining: 12 * time.Second,
		Completed: 3,
		Total:     10,
	})
	for _, want := range []string{"[3/10]", "shot.nef", "png+jpeg", "Done (4s)", "est. 12s left"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered message misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/photos/") {
		t.Error("progress line should show the base name only")
	}
}

func TestRenderMessageFinalHasNoEstimate(t *testing.T) {
	out := RenderMessage(batch.Message{
		Input:     "shot.nef",
		Outcome:   batch.OutcomeDone,
		Detail:    "png",
		Completed: 10,
		Total:     10,
	})
	if strings.Contains(out, "est.") {
		t.Errorf("final message carries an estimate:\n%s", out)
	}
}

func TestRenderMessageOutcomes(t *testing.T) {
	skip := RenderMessage(batch.Message{Input: "fake.nef", Outcome: batch.OutcomeSkipped, Detail: "Skipped (not NEF)", Completed: 1, Total: 2})
	if !strings.Contains(skip, "Skipped (not NEF)") {
		t.Errorf("skip line: %s", skip)
	}
	fail := RenderMessage(batch.Message{Input: "bad.nef", Outcome: batch.OutcomeFailed, Detail: "unpack failed", Completed: 2, Total: 2})
	if !strings.Contains(fail, "Failed: unpack failed") {
		t.Errorf("fail line: %s", fail)
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(batch.Summary{
		Done:        7,
		Skipped:     2,
		Failed:      1,
		Elapsed:     75 * time.Second,
		Interrupted: true,
	})
	for _, want := range []string{"Converted", "Skipped", "Failed", "1m 15s", "Interrupted"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Dropped") {
		t.Error("summary shows a Dropped row with no dropped jobs")
	}
}
