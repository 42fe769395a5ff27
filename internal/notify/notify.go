// Package notify builds notification records from task state. Nothing
// here delivers anything: the records describe what a delivery layer
// would send and when.
package notify

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/habito/internal/model"
	"github.com/nhle/habito/internal/timeutil"
)

// Type classifies a notification.
type Type string

const (
	TypeReminder      Type = "reminder"
	TypeEncouragement Type = "encouragement"
	TypeAchievement   Type = "achievement"
)

// DefaultReminderTime is used for tasks without a time of day.
const DefaultReminderTime = "09:00"

// Notification is one pending or scheduled notification record.
type Notification struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id,omitempty"`
	TaskDescription string     `json:"task_description,omitempty"`
	ScheduledTime   string     `json:"scheduled_time"`
	Message         string     `json:"message"`
	Type            Type       `json:"type"`
	IsScheduled     bool       `json:"is_scheduled"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
}

// QuietHours is a daily window in which no reminders fire.
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ReminderSettings controls which notifications Pending produces.
type ReminderSettings struct {
	Enabled              bool
	ReminderTime         string
	IncludeEncouragement bool
	Quiet                *QuietHours
}

// SettingsFromConfig maps the app reminder configuration onto
// ReminderSettings. An empty quiet window means no quiet hours.
func SettingsFromConfig(cfg model.ReminderConfig) ReminderSettings {
	s := ReminderSettings{
		Enabled:              cfg.Enabled,
		ReminderTime:         cfg.DefaultTime,
		IncludeEncouragement: cfg.IncludeEncouragement,
	}
	if s.ReminderTime == "" {
		s.ReminderTime = DefaultReminderTime
	}
	if cfg.QuietStart != "" && cfg.QuietEnd != "" {
		s.Quiet = &QuietHours{Start: cfg.QuietStart, End: cfg.QuietEnd}
	}
	return s
}

// TaskReminder builds a reminder for a task. Untimed tasks fall back
// to the default reminder time and are marked unscheduled.
func TaskReminder(task model.Task) Notification {
	scheduledTime := DefaultReminderTime
	if task.Time != nil {
		scheduledTime = *task.Time
	}
	return Notification{
		ID:              uuid.New().String(),
		TaskID:          task.ID,
		TaskDescription: task.Description,
		ScheduledTime:   scheduledTime,
		Message:         fmt.Sprintf("Don't forget: %s", task.Description),
		Type:            TypeReminder,
		IsScheduled:     task.Time != nil,
	}
}

var encouragements = []string{
	"You're doing great! Keep going!",
	"One step at a time. You got this!",
	"Progress over perfection. Keep moving!",
	"Every task completed is a win!",
	"You are building better habits!",
}

// Encouragement picks a random encouragement message. A nil rng falls
// back to the package-global source.
func Encouragement(rng *rand.Rand) Notification {
	var idx int
	if rng != nil {
		idx = rng.IntN(len(encouragements))
	} else {
		idx = rand.IntN(len(encouragements))
	}
	return Notification{
		ID:            uuid.New().String(),
		ScheduledTime: "12:00",
		Message:       encouragements[idx],
		Type:          TypeEncouragement,
	}
}

// AchievementUnlocked builds an achievement notification stamped with
// the current time of day.
func AchievementUnlocked(badge string, now time.Time) Notification {
	return Notification{
		ID:            uuid.New().String(),
		ScheduledTime: now.Format("15:04"),
		Message:       fmt.Sprintf("Achievement unlocked: %s", badge),
		Type:          TypeAchievement,
	}
}

// InQuietHours reports whether an HH:MM time falls inside the quiet
// window, endpoints included. A nil window never matches.
func InQuietHours(t string, quiet *QuietHours) bool {
	if quiet == nil {
		return false
	}
	return timeutil.Compare(t, quiet.Start) >= 0 && timeutil.Compare(t, quiet.End) <= 0
}

// Pending returns the reminders due right now: incomplete timed tasks
// whose time has already passed today and which fall outside quiet
// hours. At noon and six in the evening an encouragement is added when
// enabled.
func Pending(tasks []model.Task, settings ReminderSettings, now time.Time) []Notification {
	if !settings.Enabled {
		return nil
	}

	currentTime := now.Format("15:04")

	var notifications []Notification
	for _, task := range tasks {
		if task.IsCompleted || task.Time == nil {
			continue
		}
		if timeutil.Compare(*task.Time, currentTime) <= 0 &&
			!InQuietHours(*task.Time, settings.Quiet) {
			notifications = append(notifications, TaskReminder(task))
		}
	}

	if settings.IncludeEncouragement {
		if hour := now.Hour(); hour == 12 || hour == 18 {
			notifications = append(notifications, Encouragement(nil))
		}
	}

	return notifications
}

// ScheduleForDay builds the day's reminder schedule keyed by
// notification id: every incomplete timed task outside quiet hours
// gets one.
func ScheduleForDay(tasks []model.Task, settings ReminderSettings) map[string]Notification {
	scheduled := make(map[string]Notification)
	if !settings.Enabled {
		return scheduled
	}

	for _, task := range tasks {
		if task.IsCompleted || task.Time == nil {
			continue
		}
		if InQuietHours(*task.Time, settings.Quiet) {
			continue
		}
		reminder := TaskReminder(task)
		scheduled[reminder.ID] = reminder
	}

	return scheduled
}
