package analytics

import (
	"math"

	"github.com/nhle/habito/internal/model"
)

// ProductivityScore combines completion rate, mood, and consistency
// into a 0-100 score: completion carries half the weight, the average
// rating (scaled to 0-100) thirty percent, and consecutive active days
// (5 points each, capped) the remaining twenty.
func ProductivityScore(completionRate, averageRating float64, consecutiveDays int) int {
	completionScore := math.Min(completionRate, 100) * 0.5
	moodScore := math.Min(averageRating*10, 100) * 0.3
	consistencyScore := math.Min(float64(consecutiveDays)*5, 100) * 0.2

	return int(math.Round(completionScore + moodScore + consistencyScore))
}

// Productivity level labels.
const (
	LevelExceptional      = "Exceptional"
	LevelExcellent        = "Excellent"
	LevelGood             = "Good"
	LevelFair             = "Fair"
	LevelNeedsImprovement = "Needs Improvement"
)

// ProductivityLevel maps a score to its qualitative label.
func ProductivityLevel(score int) string {
	switch {
	case score >= 90:
		return LevelExceptional
	case score >= 75:
		return LevelExcellent
	case score >= 60:
		return LevelGood
	case score >= 40:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// DailyStats summarizes a single day.
type DailyStats struct {
	Date           string `json:"date"`
	CompletedTasks int    `json:"completed_tasks"`
	TotalTasks     int    `json:"total_tasks"`
	CompletionRate int    `json:"completion_rate"`
	Rating         *int   `json:"rating,omitempty"`
	Mood           string `json:"mood"`
}

// WeeklyStats aggregates a week of daily stats.
type WeeklyStats struct {
	Week            int `json:"week"`
	TotalCompleted  int `json:"total_completed"`
	TotalTasks      int `json:"total_tasks"`
	AverageRating   int `json:"average_rating"`
	CompletionTrend int `json:"completion_trend"`
}

// MonthlyStats aggregates a month of daily stats.
type MonthlyStats struct {
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	TotalCompleted  int    `json:"total_completed"`
	TotalTasks      int    `json:"total_tasks"`
	AverageRating   int    `json:"average_rating"`
	CompletionTrend int    `json:"completion_trend"`
	BestDay         string `json:"best_day"`
	BestRating      int    `json:"best_rating"`
}

// Mood bucket labels keyed by daily rating.
const (
	MoodUnrated = "unrated"
	MoodAwful   = "awful"
	MoodLow     = "low"
	MoodMeh     = "meh"
	MoodGood    = "good"
	MoodGreat   = "great"
	MoodAmazing = "amazing"
)

// Mood buckets a daily rating into a label; nil means the day was not
// rated.
func Mood(rating *int) string {
	if rating == nil {
		return MoodUnrated
	}
	switch {
	case *rating <= 2:
		return MoodAwful
	case *rating <= 4:
		return MoodLow
	case *rating <= 5:
		return MoodMeh
	case *rating <= 7:
		return MoodGood
	case *rating <= 9:
		return MoodGreat
	default:
		return MoodAmazing
	}
}

// NewDailyStats summarizes one day's tasks and optional rating.
func NewDailyStats(date string, tasks []model.Task, rating *int) DailyStats {
	var completed int
	for _, task := range tasks {
		if task.IsCompleted {
			completed++
		}
	}

	var rate int
	if len(tasks) > 0 {
		rate = int(math.Round(float64(completed) / float64(len(tasks)) * 100))
	}

	return DailyStats{
		Date:           date,
		CompletedTasks: completed,
		TotalTasks:     len(tasks),
		CompletionRate: rate,
		Rating:         rating,
		Mood:           Mood(rating),
	}
}

// sumStats totals completed, total, and rating sums over the days that
// actually had tasks.
func sumStats(dailyStats []DailyStats) (completed, total, ratingSum, ratingCount int) {
	for _, s := range dailyStats {
		if s.TotalTasks == 0 {
			continue
		}
		completed += s.CompletedTasks
		total += s.TotalTasks
		if s.Rating != nil {
			ratingSum += *s.Rating
			ratingCount++
		}
	}
	return completed, total, ratingSum, ratingCount
}

// NewWeeklyStats aggregates one week of daily stats. Days without
// tasks are excluded from every aggregate.
func NewWeeklyStats(dailyStats []DailyStats, weekNumber int) WeeklyStats {
	completed, total, ratingSum, ratingCount := sumStats(dailyStats)

	var trend, averageRating int
	if total > 0 {
		trend = int(math.Round(float64(completed) / float64(total) * 100))
	}
	if ratingCount > 0 {
		averageRating = int(math.Round(float64(ratingSum) / float64(ratingCount)))
	}

	return WeeklyStats{
		Week:            weekNumber,
		TotalCompleted:  completed,
		TotalTasks:      total,
		AverageRating:   averageRating,
		CompletionTrend: trend,
	}
}

// NewMonthlyStats aggregates one month of daily stats, tracking the
// day with the highest completion rate and the best rating seen.
func NewMonthlyStats(dailyStats []DailyStats, month, year int) MonthlyStats {
	completed, total, ratingSum, ratingCount := sumStats(dailyStats)

	var trend, averageRating int
	if total > 0 {
		trend = int(math.Round(float64(completed) / float64(total) * 100))
	}
	if ratingCount > 0 {
		averageRating = int(math.Round(float64(ratingSum) / float64(ratingCount)))
	}

	var bestDay string
	bestRate := -1
	var bestRating int
	for _, s := range dailyStats {
		if s.TotalTasks == 0 {
			continue
		}
		if s.CompletionRate > bestRate {
			bestRate = s.CompletionRate
			bestDay = s.Date
		}
		if s.Rating != nil && *s.Rating > bestRating {
			bestRating = *s.Rating
		}
	}

	return MonthlyStats{
		Month:           month,
		Year:            year,
		TotalCompleted:  completed,
		TotalTasks:      total,
		AverageRating:   averageRating,
		CompletionTrend: trend,
		BestDay:         bestDay,
		BestRating:      bestRating,
	}
}

// Trend directions.
const (
	TrendUp     = "up"
	TrendStable = "stable"
	TrendDown   = "down"
)

// Trend classifies the change between two values; moves within five
// points either way read as stable.
func Trend(previous, current int) string {
	switch diff := current - previous; {
	case diff > 5:
		return TrendUp
	case diff < -5:
		return TrendDown
	default:
		return TrendStable
	}
}

// Insights derives short user-facing observations from the current
// month against the previous one.
func Insights(current, previous MonthlyStats) []string {
	var insights []string

	if current.CompletionTrend > previous.CompletionTrend+10 {
		insights = append(insights, "Great progress! Your completion rate is improving.")
	} else if current.CompletionTrend < previous.CompletionTrend-10 {
		insights = append(insights, "Your completion rate has decreased. Try to stay consistent!")
	}

	if current.AverageRating > previous.AverageRating {
		insights = append(insights, "Your mood has improved! Keep up the good work.")
	} else if current.AverageRating < previous.AverageRating-2 {
		insights = append(insights, "Your mood has been lower. Remember to take care of yourself.")
	}

	if current.CompletionTrend >= 80 {
		insights = append(insights, "Excellent consistency! You're completing most of your tasks.")
	} else if current.CompletionTrend >= 50 {
		insights = append(insights, "Good effort! You're on the right track.")
	} else if current.CompletionTrend < 25 {
		insights = append(insights, "Consider starting with fewer tasks for better success.")
	}

	return insights
}
