// Package stats aggregates habit records into averages, totals, daily
// breakdowns and streaks. Every function is pure: the caller supplies the
// records and the reference time.
package stats

import (
	"math"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/user"
)

// MaxStreakLookback is how many days back Streak will walk, today included.
const MaxStreakLookback = 30

const dayLayout = "2006-01-02"

type DailyStats struct {
	Date       string  `json:"date"`
	Water      float64 `json:"water"`
	Sleep      float64 `json:"sleep"`
	Steps      float64 `json:"steps"`
	Exercise   float64 `json:"exercise"`
	Nutrition  float64 `json:"nutrition"`
	Meditation float64 `json:"meditation"`
	Reading    float64 `json:"reading"`
	Records    int     `json:"records"`
}

type Summary struct {
	From       time.Time              `json:"from"`
	To         time.Time              `json:"to"`
	Averages   map[habit.Type]float64 `json:"averages"`
	Totals     map[habit.Type]float64 `json:"totals"`
	TotalSteps float64                `json:"totalSteps"`
	Streak     int                    `json:"streak"`
	ActiveDays int                    `json:"activeDays"`
	Days       []DailyStats           `json:"days"`
}

type Progress struct {
	Date     string  `json:"date"`
	Water    float64 `json:"water"`
	Sleep    float64 `json:"sleep"`
	Steps    float64 `json:"steps"`
	Exercise float64 `json:"exercise"`
	Calories float64 `json:"calories"`
}

// Averages returns the mean value per habit type. Types without records
// average to 0 so every known type is present.
func Averages(records []habit.Record) map[habit.Type]float64 {
	sums := make(map[habit.Type]float64, len(habit.AllTypes))
	counts := make(map[habit.Type]int, len(habit.AllTypes))
	for _, r := range records {
		sums[r.HabitType] += r.Value
		counts[r.HabitType]++
	}

	avgs := make(map[habit.Type]float64, len(habit.AllTypes))
	for _, t := range habit.AllTypes {
		if counts[t] == 0 {
			avgs[t] = 0
			continue
		}
		avgs[t] = sums[t] / float64(counts[t])
	}
	return avgs
}

func Average(records []habit.Record, t habit.Type) float64 {
	var sum float64
	var n int
	for _, r := range records {
		if r.HabitType != t {
			continue
		}
		sum += r.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func Total(records []habit.Record, t habit.Type) float64 {
	var sum float64
	for _, r := range records {
		if r.HabitType == t {
			sum += r.Value
		}
	}
	return sum
}

func TotalSteps(records []habit.Record) float64 {
	return Total(records, habit.TypeSteps)
}

// Streak counts consecutive active days ending on the day of now, in now's
// location. A day is active when it has at least one record. The walk stops
// at the first inactive day and never looks back more than MaxStreakLookback
// days.
func Streak(records []habit.Record, now time.Time) int {
	loc := now.Location()
	active := make(map[string]bool, len(records))
	for _, r := range records {
		active[r.RecordDate.In(loc).Format(dayLayout)] = true
	}

	today := StartOfDay(now)
	streak := 0
	for i := 0; i < MaxStreakLookback; i++ {
		day := today.AddDate(0, 0, -i).Format(dayLayout)
		if !active[day] {
			break
		}
		streak++
	}
	return streak
}

// Daily buckets records per calendar day from the day of from through the
// day of to, both inclusive, in from's location. Days without records are
// zero-filled.
func Daily(records []habit.Record, from, to time.Time) []DailyStats {
	loc := from.Location()
	start := StartOfDay(from)
	end := StartOfDay(to.In(loc))
	if end.Before(start) {
		return []DailyStats{}
	}

	index := make(map[string]int)
	var days []DailyStats
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		index[key] = len(days)
		days = append(days, DailyStats{Date: key})
	}

	for _, r := range records {
		i, ok := index[r.RecordDate.In(loc).Format(dayLayout)]
		if !ok {
			continue
		}
		day := &days[i]
		day.Records++
		switch r.HabitType {
		case habit.TypeWater:
			day.Water += r.Value
		case habit.TypeSleep:
			day.Sleep += r.Value
		case habit.TypeSteps:
			day.Steps += r.Value
		case habit.TypeExercise:
			day.Exercise += r.Value
		case habit.TypeNutrition:
			day.Nutrition += r.Value
		case habit.TypeMeditation:
			day.Meditation += r.Value
		case habit.TypeReading:
			day.Reading += r.Value
		}
	}
	return days
}

// Summarize aggregates the records that fall inside [from, to]. The streak
// is computed over every record passed in, so callers wanting a full streak
// should include the last MaxStreakLookback days.
func Summarize(records []habit.Record, from, to, now time.Time) Summary {
	inWindow := make([]habit.Record, 0, len(records))
	for _, r := range records {
		if r.RecordDate.Before(from) || r.RecordDate.After(to) {
			continue
		}
		inWindow = append(inWindow, r)
	}

	totals := make(map[habit.Type]float64, len(habit.AllTypes))
	for _, t := range habit.AllTypes {
		totals[t] = Total(inWindow, t)
	}

	days := Daily(inWindow, from, to)
	activeDays := 0
	for _, d := range days {
		if d.Records > 0 {
			activeDays++
		}
	}

	return Summary{
		From:       from,
		To:         to,
		Averages:   Averages(inWindow),
		Totals:     totals,
		TotalSteps: totals[habit.TypeSteps],
		Streak:     Streak(records, now),
		ActiveDays: activeDays,
		Days:       days,
	}
}

// WeekWindow returns the seven calendar days ending with the day of now.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	today := StartOfDay(now)
	return today.AddDate(0, 0, -6), EndOfDay(now)
}

// StreakWindowStart is the earliest instant Streak can look at.
func StreakWindowStart(now time.Time) time.Time {
	return StartOfDay(now).AddDate(0, 0, -(MaxStreakLookback - 1))
}

// GoalProgress reports each goal as a percentage reached, capped at 100.
func GoalProgress(day DailyStats, goals user.DailyGoals) Progress {
	return Progress{
		Date:     day.Date,
		Water:    percent(day.Water, goals.Water),
		Sleep:    percent(day.Sleep, goals.Sleep),
		Steps:    percent(day.Steps, goals.Steps),
		Exercise: percent(day.Exercise, goals.Exercise),
		Calories: percent(day.Nutrition, goals.Calories),
	}
}

func percent(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	p := value / goal * 100
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

// EndOfDay is the last nanosecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfDay is midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
