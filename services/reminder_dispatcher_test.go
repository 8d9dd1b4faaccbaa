package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminderFixture(t *testing.T, hour int) (*ReminderDispatcher, *fakeUsers, *HabitService, *fakeSender) {
	t.Helper()
	habits, _, _ := newHabitService(t)
	users := newFakeUsers()
	sender := &fakeSender{done: make(chan struct{}, 10)}
	d := NewReminderDispatcher(users, habits, sender, ReminderConfig{Hour: hour, Interval: time.Hour, Workers: 2})
	d.now = fixedClock
	return d, users, habits, sender
}

func waitForPushes(t *testing.T, s *fakeSender, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d pushes, got %d", n, i)
		}
	}
}

func TestReminderRunOnce(t *testing.T) {
	d, users, habits, sender := newReminderFixture(t, 18)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users.users["idle"] = user.User{NotificationEnabled: true, Language: "en", DeviceTokens: []string{"t-idle"}}
	users.users["active"] = user.User{NotificationEnabled: true, DeviceTokens: []string{"t-active"}}
	users.users["no-devices"] = user.User{NotificationEnabled: true}
	users.users["opted-out"] = user.User{DeviceTokens: []string{"t-out"}}
	users.users["streaker"] = user.User{NotificationEnabled: true, DeviceTokens: []string{"t-streak"}}
	users.users["elsewhere"] = user.User{NotificationEnabled: true, Timezone: "Asia/Tokyo", DeviceTokens: []string{"t-tokyo"}}

	seed(t, habits, "active", habit.TypeWater, 500, refNow)
	seed(t, habits, "streaker", habit.TypeWater, 500, refNow.AddDate(0, 0, -1))
	seed(t, habits, "streaker", habit.TypeWater, 500, refNow.AddDate(0, 0, -2))

	d.Start(ctx)
	defer d.Stop()

	n, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	waitForPushes(t, sender, 2)

	sender.mu.Lock()
	byUser := map[string]notification.Push{}
	for _, p := range sender.pushes {
		byUser[p.UserID] = p
	}
	sender.mu.Unlock()

	require.Contains(t, byUser, "idle")
	assert.Equal(t, notification.TypeDailyReminder, byUser["idle"].Type)
	assert.Equal(t, "How is your day going?", byUser["idle"].Title)

	require.Contains(t, byUser, "streaker")
	assert.Equal(t, notification.TypeStreakRisk, byUser["streaker"].Type)
	assert.Contains(t, byUser["streaker"].Body, "2 días")

	n, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "one reminder per user per day")
}

func TestReminderDropsInvalidTokens(t *testing.T) {
	d, users, _, sender := newReminderFixture(t, 18)
	sender.invalid = []string{"stale"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users.users["u1"] = user.User{NotificationEnabled: true, DeviceTokens: []string{"stale", "fresh"}}

	d.Start(ctx)
	n, err := d.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	waitForPushes(t, sender, 1)
	d.Stop()

	users.mu.Lock()
	defer users.mu.Unlock()
	assert.Equal(t, []string{"stale"}, users.removed)
	assert.Equal(t, []string{"fresh"}, users.users["u1"].DeviceTokens)
}

func TestReminderOutsideHour(t *testing.T) {
	d, users, _, _ := newReminderFixture(t, 20)
	users.users["u1"] = user.User{NotificationEnabled: true, DeviceTokens: []string{"t"}}

	n, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReminderStreakSeesFullLookback(t *testing.T) {
	d, users, habits, sender := newReminderFixture(t, 18)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users.users["long"] = user.User{NotificationEnabled: true, DeviceTokens: []string{"t-long"}}
	for i := 1; i <= stats.MaxStreakLookback; i++ {
		seed(t, habits, "long", habit.TypeSteps, 1000, refNow.AddDate(0, 0, -i))
	}

	d.Start(ctx)
	defer d.Stop()

	n, err := d.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	waitForPushes(t, sender, 1)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.pushes, 1)
	assert.Equal(t, notification.TypeStreakRisk, sender.pushes[0].Type)
	assert.Contains(t, sender.pushes[0].Body, fmt.Sprintf("%d días", stats.MaxStreakLookback))
}
