package services

import (
	"context"
	"testing"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsFixture(t *testing.T) (*StatsService, *HabitService) {
	t.Helper()
	habits, _, _ := newHabitService(t)
	st := NewStatsService(habits)
	st.now = fixedClock
	return st, habits
}

func TestWeekly(t *testing.T) {
	st, habits := newStatsFixture(t)

	// Three consecutive days ending today plus one outside the week.
	for i := 0; i < 3; i++ {
		seed(t, habits, "u1", habit.TypeSteps, float64(1000*(i+1)), refNow.AddDate(0, 0, -i))
	}
	seed(t, habits, "u1", habit.TypeSteps, 99999, refNow.AddDate(0, 0, -10))
	seed(t, habits, "other", habit.TypeSteps, 5000, refNow)

	summary, err := st.Weekly(context.Background(), "u1", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 6000.0, summary.TotalSteps)
	assert.Equal(t, 2000.0, summary.Averages[habit.TypeSteps])
	assert.Equal(t, 0.0, summary.Averages[habit.TypeWater])
	assert.Equal(t, 3, summary.Streak)
	assert.Equal(t, 3, summary.ActiveDays)
	assert.Len(t, summary.Days, 7)
}

func TestWeeklyEmpty(t *testing.T) {
	st, _ := newStatsFixture(t)

	summary, err := st.Weekly(context.Background(), "u1", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Streak)
	for _, avg := range summary.Averages {
		assert.Zero(t, avg)
	}
}

func TestDaily(t *testing.T) {
	st, habits := newStatsFixture(t)
	seed(t, habits, "u1", habit.TypeWater, 500, refNow)
	seed(t, habits, "u1", habit.TypeWater, 250, refNow.Add(-time.Hour))
	seed(t, habits, "u1", habit.TypeSleep, 7, refNow.AddDate(0, 0, -2))

	from := refNow.AddDate(0, 0, -2)
	days, err := st.Daily(context.Background(), "u1", from, refNow, time.UTC)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-03-13", days[0].Date)
	assert.Equal(t, 7.0, days[0].Sleep)
	assert.Equal(t, 0, days[1].Records)
	assert.Equal(t, 750.0, days[2].Water)

	_, err = st.Daily(context.Background(), "u1", refNow, from, time.UTC)
	assert.ErrorIs(t, err, habit.ErrValidation)

	_, err = st.Daily(context.Background(), "u1", refNow.AddDate(-2, 0, 0), refNow, time.UTC)
	assert.ErrorIs(t, err, habit.ErrValidation)
}

func TestToday(t *testing.T) {
	st, habits := newStatsFixture(t)
	seed(t, habits, "u1", habit.TypeWater, 1000, refNow)
	seed(t, habits, "u1", habit.TypeSteps, 20000, refNow)
	seed(t, habits, "u1", habit.TypeNutrition, 500, refNow)

	today, err := st.Today(context.Background(), "u1", user.DefaultDailyGoals(), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-15", today.Day.Date)
	assert.Equal(t, 50.0, today.Progress.Water)
	assert.Equal(t, 100.0, today.Progress.Steps)
	assert.Equal(t, 25.0, today.Progress.Calories)
	assert.Equal(t, 0.0, today.Progress.Sleep)
	assert.Equal(t, 1, today.Streak)
}

func TestTodayUsesCallerTimeZone(t *testing.T) {
	st, habits := newStatsFixture(t)
	// 18:30 UTC on the 15th is already the 16th in Auckland; 10:30 UTC is
	// still the 15th there.
	seed(t, habits, "u1", habit.TypeWater, 1000, refNow.Add(-8*time.Hour))

	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	today, err := st.Today(context.Background(), "u1", user.DefaultDailyGoals(), auckland)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-16", today.Day.Date)
	assert.Equal(t, 0.0, today.Day.Water)
	assert.Equal(t, 0, today.Streak)
}
