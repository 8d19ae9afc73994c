package models

import (
	"strings"
	"time"
)

var moodNames = [...]string{"rough", "down", "okay", "good", "amazing"}

const (
	MinMoodLevel = 1
	MaxMoodLevel = 5
)

// MoodName maps a level to its display name, clamping out-of-range levels
// to the nearest end of the scale.
func MoodName(level int) string {
	if level < MinMoodLevel {
		level = MinMoodLevel
	}
	if level > MaxMoodLevel {
		level = MaxMoodLevel
	}
	return moodNames[level-1]
}

// MoodNames lists the names in level order.
func MoodNames() []string {
	return moodNames[:]
}

// MoodLog is a single mood check-in. MoodLevel is stored as sent; Mood is
// derived from it on read.
type MoodLog struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `json:"user_id,string"`
	MoodLevel int       `json:"mood_level"`
	Notes     string    `json:"notes"`
	LoggedAt  time.Time `json:"logged_at"`
	Mood      string    `json:"mood"`
}

// MoodStats summarises the mood logs of one period.
type MoodStats struct {
	Period       Period         `json:"period"`
	Count        int            `json:"count"`
	Average      float64        `json:"average"`
	AverageMood  string         `json:"average_mood,omitempty"`
	Distribution map[string]int `json:"distribution"`
	StreakDays   int            `json:"streak_days"`
}

type Period string

const (
	PeriodAll   Period = "all"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod returns PeriodAll for anything it does not recognise.
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p
	default:
		return PeriodAll
	}
}

// Range returns the half-open [from, to) window of the period relative to
// now. "day" is the current calendar day in now's location; "week" and
// "month" are rolling 7 and 30 days. ok is false for PeriodAll.
func (p Period) Range(now time.Time) (from, to time.Time, ok bool) {
	switch p {
	case PeriodDay:
		y, m, d := now.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 0, 1), true
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now.Add(time.Second), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), now.Add(time.Second), true
	default:
		return time.Time{}, time.Time{}, false
	}
}
