package remotestore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/user"
)

// setupEmulator connects to the Firestore emulator; the client library picks
// up FIRESTORE_EMULATOR_HOST on its own.
func setupEmulator(t *testing.T) *firestore.Client {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "vive-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHabitStoreRoundTrip(t *testing.T) {
	store := NewHabitStore(setupEmulator(t))
	ctx := context.Background()
	userID := "user_" + uuid.NewString()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i, ht := range []habit.Type{habit.TypeWater, habit.TypeSteps, habit.TypeWater} {
		rec := &habit.Record{
			ID:         uuid.NewString(),
			UserID:     userID,
			HabitType:  ht,
			Value:      float64(100 * (i + 1)),
			Unit:       ht.DefaultUnit(),
			RecordDate: base.Add(time.Duration(i) * time.Hour),
			CreatedAt:  base,
		}
		require.NoError(t, store.Create(ctx, rec))
		ids = append(ids, rec.ID)
	}

	water, err := store.Query(ctx, userID, habit.ListQuery{Type: habit.TypeWater})
	require.NoError(t, err)
	require.Len(t, water, 2)
	assert.Equal(t, ids[2], water[0].ID)

	ranged, err := store.Query(ctx, userID, habit.ListQuery{From: base.Add(30 * time.Minute), To: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, habit.TypeSteps, ranged[0].HabitType)

	got, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	got.Value = 999
	require.NoError(t, store.Update(ctx, got))

	got, err = store.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 999.0, got.Value)

	require.NoError(t, store.Delete(ctx, ids[0]))
	_, err = store.Get(ctx, ids[0])
	assert.ErrorIs(t, err, habit.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, ids[0]), habit.ErrNotFound)
}

func TestUserStoreRoundTrip(t *testing.T) {
	store := NewUserStore(setupEmulator(t))
	ctx := context.Background()

	u := &user.User{
		ID:                  "uid_" + uuid.NewString(),
		Email:               "ana@example.com",
		Name:                "Ana",
		Language:            user.LanguageSpanish,
		DailyGoals:          user.DefaultDailyGoals(),
		NotificationEnabled: true,
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
	require.NoError(t, store.CreateUser(ctx, u))
	require.NoError(t, store.AddDeviceToken(ctx, u.ID, "token-1"))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, []string{"token-1"}, got.DeviceTokens)

	candidates, err := store.ListReminderCandidates(ctx)
	require.NoError(t, err)
	found := false
	for _, c := range candidates {
		if c.ID == u.ID {
			found = true
		}
	}
	assert.True(t, found)

	require.NoError(t, store.RemoveDeviceToken(ctx, u.ID, "token-1"))
	got, err = store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DeviceTokens)

	_, err = store.GetUser(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserStoreUpdateKeepsDeviceTokens(t *testing.T) {
	store := NewUserStore(setupEmulator(t))
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	u := &user.User{
		ID:         "uid_" + uuid.NewString(),
		Email:      "luis@example.com",
		Name:       "Luis",
		Language:   user.LanguageSpanish,
		DailyGoals: user.DefaultDailyGoals(),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	require.NoError(t, store.CreateUser(ctx, u))

	// u was read before the token was registered.
	require.NoError(t, store.AddDeviceToken(ctx, u.ID, "token-1"))

	u.Name = "Luis M."
	u.Language = user.LanguageEnglish
	u.DailyGoals.Water = 2500
	u.NotificationEnabled = true
	u.Timezone = "America/Bogota"
	u.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, store.UpdateUser(ctx, u))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luis M.", got.Name)
	assert.Equal(t, "luis@example.com", got.Email)
	assert.Equal(t, user.LanguageEnglish, got.Language)
	assert.Equal(t, 2500.0, got.DailyGoals.Water)
	assert.True(t, got.NotificationEnabled)
	assert.Equal(t, "America/Bogota", got.Timezone)
	assert.Equal(t, []string{"token-1"}, got.DeviceTokens)
	assert.True(t, created.Equal(got.CreatedAt))

	assert.Error(t, store.CreateUser(ctx, u))

	err = store.UpdateUser(ctx, &user.User{ID: "missing-" + uuid.NewString()})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestProfileUpdatesLeaveIdentityAndTokens(t *testing.T) {
	u := &user.User{
		ID:           "u1",
		Email:        "ana@example.com",
		Name:         "Ana",
		Timezone:     "Europe/Madrid",
		DailyGoals:   user.DefaultDailyGoals(),
		DeviceTokens: []string{"stale"},
	}

	paths := map[string]any{}
	for _, up := range profileUpdates(u) {
		paths[up.Path] = up.Value
	}

	assert.Equal(t, "Ana", paths["name"])
	assert.Equal(t, "Europe/Madrid", paths["timezone"])
	assert.Equal(t, user.DefaultDailyGoals(), paths["daily_goals"])
	assert.Contains(t, paths, "updated_at")
	for _, p := range []string{"email", "created_at", "device_tokens"} {
		assert.NotContains(t, paths, p)
	}
}

// The update must get past client-side validation and fail only on the
// unreachable server.
func TestUpdateUserReachesServer(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := firestore.NewClient(ctx, "vive-offline")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	store := NewUserStore(client)

	err = store.UpdateUser(ctx, &user.User{ID: "u1", Name: "Ana", UpdatedAt: time.Now().UTC()})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "can only be specified")
	assert.NotErrorIs(t, err, user.ErrNotFound)

	assert.Error(t, store.UpdateUser(ctx, &user.User{}))
}
