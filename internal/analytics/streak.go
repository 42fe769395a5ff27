// Package analytics computes streaks, completion aggregates, and
// productivity scores over task and rating history. Every function is
// pure: callers pass an already-fetched grouping of tasks by date key
// and may run computations concurrently over independent snapshots.
package analytics

import (
	"math"
	"sort"

	"github.com/nhle/habito/internal/datekey"
	"github.com/nhle/habito/internal/model"
)

// StreakInfo describes a task's completion streak relative to a
// reference date.
type StreakInfo struct {
	// CurrentStreak is the run of consecutive completions ending at the
	// reference date. Zero when the most recent completion is older.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak is the longest run found anywhere in the history.
	LongestStreak int `json:"longest_streak"`

	// IsActive reports whether the task was completed on the reference
	// date itself.
	IsActive bool `json:"is_active"`

	// LastCompletedDate is the most recent date key with a completion,
	// empty when the task was never completed.
	LastCompletedDate string `json:"last_completed_date,omitempty"`
}

// sortedKeysDesc returns the map's date keys newest first. Keys that do
// not parse as date keys are dropped.
func sortedKeysDesc(tasksByDate map[string][]model.Task) []string {
	keys := make([]string, 0, len(tasksByDate))
	for key := range tasksByDate {
		if datekey.Valid(key) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		c, _ := datekey.Compare(keys[i], keys[j])
		return c > 0
	})
	return keys
}

// CalculateStreak walks the history newest first, counting consecutive
// dates on which the task with taskID was completed. A date where the
// task exists but is incomplete breaks the run, and so does a date
// missing from the map entirely: only dates present as keys are
// scanned, so a gap in the keys reads as a break. CurrentStreak only
// counts while no break has occurred and is zeroed unless the most
// recent completion is exactly endDate.
func CalculateStreak(tasksByDate map[string][]model.Task, taskID, endDate string) StreakInfo {
	var (
		currentStreak     int
		longestStreak     int
		lastCompletedDate string
		tempStreak        int
		streakBroken      bool
	)

	for _, date := range sortedKeysDesc(tasksByDate) {
		completed := false
		for _, task := range tasksByDate[date] {
			if task.ID == taskID {
				completed = task.IsCompleted
				break
			}
		}

		if completed {
			tempStreak++
			if lastCompletedDate == "" {
				lastCompletedDate = date
			}
			if !streakBroken {
				currentStreak++
			}
		} else if tempStreak > 0 {
			if tempStreak > longestStreak {
				longestStreak = tempStreak
			}
			tempStreak = 0
			streakBroken = true
		}
	}

	// A streak that does not touch the reference date is not current.
	if lastCompletedDate != endDate {
		currentStreak = 0
	}
	if tempStreak > longestStreak {
		longestStreak = tempStreak
	}

	return StreakInfo{
		CurrentStreak:     currentStreak,
		LongestStreak:     longestStreak,
		IsActive:          lastCompletedDate == endDate,
		LastCompletedDate: lastCompletedDate,
	}
}

// CompletionRate returns the rounded percentage of completed tasks
// across every date in the map, 0 when there are none. The bounds are
// accepted for symmetry with the other aggregates but do not filter:
// the caller passes an already-bounded map.
func CompletionRate(tasksByDate map[string][]model.Task, startDate, endDate string) int {
	var total, completed int
	for _, tasks := range tasksByDate {
		total += len(tasks)
		for _, task := range tasks {
			if task.IsCompleted {
				completed++
			}
		}
	}

	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// AverageDailyCompletion returns the rounded mean number of completions
// per day, counting only days with at least one completion.
func AverageDailyCompletion(tasksByDate map[string][]model.Task, startDate, endDate string) int {
	var totalCompleted, activeDays int
	for _, tasks := range tasksByDate {
		var completed int
		for _, task := range tasks {
			if task.IsCompleted {
				completed++
			}
		}
		if completed > 0 {
			totalCompleted += completed
			activeDays++
		}
	}

	if activeDays == 0 {
		return 0
	}
	return int(math.Round(float64(totalCompleted) / float64(activeDays)))
}

// ConsecutiveActiveDays counts back from endDate by real calendar days
// while each consecutive date exists in the map and has at least one
// completed task.
func ConsecutiveActiveDays(tasksByDate map[string][]model.Task, endDate string) int {
	if !datekey.Valid(endDate) {
		return 0
	}

	var days int
	expected := endDate
	for {
		tasks, ok := tasksByDate[expected]
		if !ok {
			break
		}
		active := false
		for _, task := range tasks {
			if task.IsCompleted {
				active = true
				break
			}
		}
		if !active {
			break
		}
		days++
		prev, err := datekey.AddDays(expected, -1)
		if err != nil {
			break
		}
		expected = prev
	}

	return days
}

// Achievement badges unlocked by the rule table in Achievements.
const (
	BadgeWeekWarrior          = "week_warrior"
	BadgeMonthlyMaster        = "monthly_master"
	BadgeCenturyChampion      = "century_champion"
	BadgeHalfwayThere         = "halfway_there"
	BadgeThreeQuarterCrusader = "three_quarter_crusader"
	BadgePerfectDay           = "perfect_day"
	BadgeConsistentClimber    = "consistent_climber"
	BadgeMomentumMaster       = "momentum_master"
)

// Achievements applies the badge rule table: longest streak at
// 7/30/100 days, completion rate at 50/75 with an exact 100 for the
// top badge, consecutive active days at 7/30. The result is
// deduplicated and returned in a fixed order.
func Achievements(streaks map[string]StreakInfo, completionRate, consecutiveDays int) []string {
	unlocked := make(map[string]bool)

	for _, streak := range streaks {
		if streak.LongestStreak >= 7 {
			unlocked[BadgeWeekWarrior] = true
		}
		if streak.LongestStreak >= 30 {
			unlocked[BadgeMonthlyMaster] = true
		}
		if streak.LongestStreak >= 100 {
			unlocked[BadgeCenturyChampion] = true
		}
	}

	if completionRate >= 50 {
		unlocked[BadgeHalfwayThere] = true
	}
	if completionRate >= 75 {
		unlocked[BadgeThreeQuarterCrusader] = true
	}
	if completionRate == 100 {
		unlocked[BadgePerfectDay] = true
	}

	if consecutiveDays >= 7 {
		unlocked[BadgeConsistentClimber] = true
	}
	if consecutiveDays >= 30 {
		unlocked[BadgeMomentumMaster] = true
	}

	order := []string{
		BadgeWeekWarrior, BadgeMonthlyMaster, BadgeCenturyChampion,
		BadgeHalfwayThere, BadgeThreeQuarterCrusader, BadgePerfectDay,
		BadgeConsistentClimber, BadgeMomentumMaster,
	}
	var badges []string
	for _, badge := range order {
		if unlocked[badge] {
			badges = append(badges, badge)
		}
	}
	return badges
}
