package services

import (
	"context"
	"fmt"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"
)

// MaxDailyRange bounds /stats/daily so one request cannot scan years.
const MaxDailyRange = 366

type StatsService struct {
	records recordLister
	now     func() time.Time
}

func NewStatsService(records recordLister) *StatsService {
	return &StatsService{records: records, now: time.Now}
}

type TodayProgress struct {
	Day      stats.DailyStats `json:"day"`
	Goals    user.DailyGoals  `json:"goals"`
	Progress stats.Progress   `json:"progress"`
	Streak   int              `json:"streak"`
}

// Overview is the weekly summary and today's progress computed from one
// fetch.
type Overview struct {
	Weekly stats.Summary `json:"weekly"`
	Today  TodayProgress `json:"today"`
}

// Weekly summarises the last seven calendar days in loc.
func (s *StatsService) Weekly(ctx context.Context, userID string, loc *time.Location) (*stats.Summary, error) {
	now := s.now().In(loc)
	records, err := s.streakWindow(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	from, to := stats.WeekWindow(now)
	summary := stats.Summarize(records, from, to, now)
	return &summary, nil
}

// Daily returns one entry per day in [from, to], both taken as local days
// in loc.
func (s *StatsService) Daily(ctx context.Context, userID string, from, to time.Time, loc *time.Location) ([]stats.DailyStats, error) {
	from = stats.StartOfDay(from.In(loc))
	to = stats.EndOfDay(to.In(loc))
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not be after to", habit.ErrValidation)
	}
	if to.Sub(from) > MaxDailyRange*24*time.Hour {
		return nil, fmt.Errorf("%w: range exceeds %d days", habit.ErrValidation, MaxDailyRange)
	}

	records, err := s.records.ListRecords(ctx, userID, habit.ListQuery{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return stats.Daily(records, from, to), nil
}

func (s *StatsService) Today(ctx context.Context, userID string, goals user.DailyGoals, loc *time.Location) (*TodayProgress, error) {
	ov, err := s.Overview(ctx, userID, goals, loc)
	if err != nil {
		return nil, err
	}
	return &ov.Today, nil
}

func (s *StatsService) Overview(ctx context.Context, userID string, goals user.DailyGoals, loc *time.Location) (*Overview, error) {
	now := s.now().In(loc)
	records, err := s.streakWindow(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	ov := overviewOf(records, goals, now)
	return &ov, nil
}

// recordWindow holds records fetched before the caller's zone is known.
type recordWindow struct {
	records []habit.Record
	now     time.Time
}

// loadAnyZone fetches a streak window wide enough for any UTC offset, so the
// zone can be chosen after the fetch.
func (s *StatsService) loadAnyZone(ctx context.Context, userID string) (recordWindow, error) {
	now := s.now().UTC()
	records, err := s.records.ListRecords(ctx, userID, habit.ListQuery{
		From: stats.StreakWindowStart(now).AddDate(0, 0, -1).Add(-maxZoneOffset),
		To:   stats.EndOfDay(now).Add(maxZoneOffset),
	})
	if err != nil {
		return recordWindow{}, fmt.Errorf("failed to load records: %w", err)
	}
	return recordWindow{records: records, now: now}, nil
}

// maxZoneOffset is the largest distance between UTC and any civil time zone.
const maxZoneOffset = 14 * time.Hour

func overviewOf(records []habit.Record, goals user.DailyGoals, now time.Time) Overview {
	from, to := stats.WeekWindow(now)
	summary := stats.Summarize(records, from, to, now)

	var day stats.DailyStats
	if days := stats.Daily(records, stats.StartOfDay(now), stats.EndOfDay(now)); len(days) > 0 {
		day = days[0]
	}

	return Overview{
		Weekly: summary,
		Today: TodayProgress{
			Day:      day,
			Goals:    goals,
			Progress: stats.GoalProgress(day, goals),
			Streak:   summary.Streak,
		},
	}
}

// streakWindow loads every record the streak can reach. It covers the
// weekly window too.
func (s *StatsService) streakWindow(ctx context.Context, userID string, now time.Time) ([]habit.Record, error) {
	records, err := s.records.ListRecords(ctx, userID, habit.ListQuery{
		From: stats.StreakWindowStart(now),
		To:   stats.EndOfDay(now),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return records, nil
}
