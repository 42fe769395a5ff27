package notify_test

import (
	"testing"
	"time"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/notify"
)

func strPtr(s string) *string { return &s }

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 5, hour, minute, 0, 0, time.UTC)
}

func TestTaskReminder(t *testing.T) {
	t.Parallel()

	timed := notify.TaskReminder(model.Task{
		ID: "t1", Description: "Morning Run", Time: strPtr("06:00"),
	})
	if timed.ScheduledTime != "06:00" {
		t.Errorf("expected scheduled time 06:00, got %s", timed.ScheduledTime)
	}
	if !timed.IsScheduled {
		t.Error("timed task reminder should be scheduled")
	}
	if timed.Type != notify.TypeReminder || timed.TaskID != "t1" {
		t.Errorf("unexpected reminder %+v", timed)
	}
	if timed.Message != "Don't forget: Morning Run" {
		t.Errorf("unexpected message %q", timed.Message)
	}

	untimed := notify.TaskReminder(model.Task{ID: "t2", Description: "Read Book"})
	if untimed.ScheduledTime != notify.DefaultReminderTime {
		t.Errorf("expected fallback %s, got %s", notify.DefaultReminderTime, untimed.ScheduledTime)
	}
	if untimed.IsScheduled {
		t.Error("untimed task reminder must not be scheduled")
	}
}

func TestInQuietHours(t *testing.T) {
	t.Parallel()

	quiet := &notify.QuietHours{Start: "22:00", End: "23:30"}

	tests := []struct {
		time string
		want bool
	}{
		{"21:59", false},
		{"22:00", true},
		{"23:00", true},
		{"23:30", true},
		{"23:31", false},
		{"08:00", false},
	}
	for _, tt := range tests {
		if got := notify.InQuietHours(tt.time, quiet); got != tt.want {
			t.Errorf("InQuietHours(%s): expected %v, got %v", tt.time, tt.want, got)
		}
	}

	if notify.InQuietHours("22:30", nil) {
		t.Error("nil quiet window must never match")
	}
}

func TestPending_FiltersTasks(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "elapsed", Description: "a", Time: strPtr("08:00")},
		{ID: "future", Description: "b", Time: strPtr("15:00")},
		{ID: "done", Description: "c", Time: strPtr("07:00"), IsCompleted: true},
		{ID: "untimed", Description: "d"},
		{ID: "quiet", Description: "e", Time: strPtr("09:30")},
	}
	settings := notify.ReminderSettings{
		Enabled: true,
		Quiet:   &notify.QuietHours{Start: "09:00", End: "10:00"},
	}

	pending := notify.Pending(tasks, settings, at(14, 0))
	if len(pending) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(pending))
	}
	if pending[0].TaskID != "elapsed" {
		t.Errorf("expected reminder for elapsed task, got %s", pending[0].TaskID)
	}
}

func TestPending_DisabledReturnsNothing(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{{ID: "t", Description: "a", Time: strPtr("08:00")}}
	pending := notify.Pending(tasks, notify.ReminderSettings{Enabled: false}, at(14, 0))
	if len(pending) != 0 {
		t.Errorf("expected no notifications when disabled, got %d", len(pending))
	}
}

func TestPending_EncouragementAtFixedHours(t *testing.T) {
	t.Parallel()

	settings := notify.ReminderSettings{Enabled: true, IncludeEncouragement: true}

	for _, hour := range []int{12, 18} {
		pending := notify.Pending(nil, settings, at(hour, 30))
		if len(pending) != 1 || pending[0].Type != notify.TypeEncouragement {
			t.Errorf("hour %d: expected one encouragement, got %+v", hour, pending)
		}
	}

	if pending := notify.Pending(nil, settings, at(14, 0)); len(pending) != 0 {
		t.Errorf("expected no encouragement outside fixed hours, got %d", len(pending))
	}

	noEnc := notify.ReminderSettings{Enabled: true}
	if pending := notify.Pending(nil, noEnc, at(12, 0)); len(pending) != 0 {
		t.Errorf("expected no encouragement when not enabled, got %d", len(pending))
	}
}

func TestScheduleForDay(t *testing.T) {
	t.Parallel()

	tasks := []model.Task{
		{ID: "t1", Description: "a", Time: strPtr("08:00")},
		{ID: "t2", Description: "b", Time: strPtr("23:00")},
		{ID: "t3", Description: "c", Time: strPtr("15:00"), IsCompleted: true},
		{ID: "t4", Description: "d"},
	}
	settings := notify.ReminderSettings{
		Enabled: true,
		Quiet:   &notify.QuietHours{Start: "22:00", End: "23:59"},
	}

	scheduled := notify.ScheduleForDay(tasks, settings)
	if len(scheduled) != 1 {
		t.Fatalf("expected 1 scheduled notification, got %d", len(scheduled))
	}
	for id, n := range scheduled {
		if n.ID != id {
			t.Errorf("map key %s does not match notification id %s", id, n.ID)
		}
		if n.TaskID != "t1" {
			t.Errorf("expected t1 scheduled, got %s", n.TaskID)
		}
	}

	if got := notify.ScheduleForDay(tasks, notify.ReminderSettings{}); len(got) != 0 {
		t.Errorf("expected empty schedule when disabled, got %d", len(got))
	}
}

func TestAchievementUnlocked(t *testing.T) {
	t.Parallel()

	n := notify.AchievementUnlocked("week_warrior", at(9, 15))
	if n.Type != notify.TypeAchievement {
		t.Errorf("expected achievement type, got %s", n.Type)
	}
	if n.ScheduledTime != "09:15" {
		t.Errorf("expected 09:15, got %s", n.ScheduledTime)
	}
	if n.Message != "Achievement unlocked: week_warrior" {
		t.Errorf("unexpected message %q", n.Message)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()

	full := notify.SettingsFromConfig(model.ReminderConfig{
		Enabled:              true,
		DefaultTime:          "08:30",
		IncludeEncouragement: true,
		QuietStart:           "22:00",
		QuietEnd:             "07:00",
	})
	if !full.Enabled || full.ReminderTime != "08:30" || !full.IncludeEncouragement {
		t.Errorf("unexpected settings %+v", full)
	}
	if full.Quiet == nil || full.Quiet.Start != "22:00" || full.Quiet.End != "07:00" {
		t.Errorf("unexpected quiet window %+v", full.Quiet)
	}

	sparse := notify.SettingsFromConfig(model.ReminderConfig{Enabled: true})
	if sparse.ReminderTime != notify.DefaultReminderTime {
		t.Errorf("expected default reminder time, got %s", sparse.ReminderTime)
	}
	if sparse.Quiet != nil {
		t.Errorf("expected no quiet window, got %+v", sparse.Quiet)
	}
}
