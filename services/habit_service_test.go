package services

import (
	"context"
	"testing"
	"time"

	"viveLasoAPasoAPI/internal/habit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecord(t *testing.T) {
	svc, remote, local := newHabitService(t)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, "u1", &habit.CreateRecordRequest{HabitType: "water", Value: 750})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, habit.TypeWater, rec.HabitType)
	assert.Equal(t, "ml", rec.Unit)
	assert.True(t, rec.RecordDate.Equal(refNow))

	_, err = remote.Get(ctx, rec.ID)
	assert.NoError(t, err)
	mirrored, err := local.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 750.0, mirrored.Value)

	pending, err := local.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateRecordValidation(t *testing.T) {
	svc, _, _ := newHabitService(t)
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, "u1", &habit.CreateRecordRequest{HabitType: "yoga", Value: 1})
	assert.ErrorIs(t, err, habit.ErrInvalidType)

	_, err = svc.CreateRecord(ctx, "u1", &habit.CreateRecordRequest{HabitType: "STEPS", Value: -1})
	assert.ErrorIs(t, err, habit.ErrValidation)
}

func TestCreateRecordOfflineThenSync(t *testing.T) {
	svc, remote, local := newHabitService(t)
	ctx := context.Background()

	remote.setDown(true)
	rec := seed(t, svc, "u1", habit.TypeSteps, 4200, refNow.Add(-time.Hour))

	pending, err := local.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	list, err := svc.ListRecords(ctx, "u1", habit.ListQuery{})
	require.NoError(t, err, "listing falls back to the local mirror")
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	res, err := svc.SyncPending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Synced)
	assert.Equal(t, 1, res.Pending)

	remote.setDown(false)
	res, err = svc.SyncPending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, 0, res.Pending)

	_, err = remote.Get(ctx, rec.ID)
	assert.NoError(t, err)
}

func TestListRecordsMergesPending(t *testing.T) {
	svc, remote, _ := newHabitService(t)
	ctx := context.Background()

	online := seed(t, svc, "u1", habit.TypeWater, 300, refNow.Add(-2*time.Hour))
	remote.setDown(true)
	offline := seed(t, svc, "u1", habit.TypeWater, 400, refNow.Add(-time.Hour))
	remote.setDown(false)

	list, err := svc.ListRecords(ctx, "u1", habit.ListQuery{Type: habit.TypeWater})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, offline.ID, list[0].ID)
	assert.Equal(t, online.ID, list[1].ID)

	limited, err := svc.ListRecords(ctx, "u1", habit.ListQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetRecordOwnership(t *testing.T) {
	svc, remote, _ := newHabitService(t)
	ctx := context.Background()
	rec := seed(t, svc, "owner", habit.TypeSleep, 7.5, refNow)

	got, err := svc.GetRecord(ctx, "owner", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "hours", got.Unit)

	_, err = svc.GetRecord(ctx, "intruder", rec.ID)
	assert.ErrorIs(t, err, habit.ErrForbidden)

	_, err = svc.GetRecord(ctx, "owner", "missing")
	assert.ErrorIs(t, err, habit.ErrNotFound)

	remote.setDown(true)
	got, err = svc.GetRecord(ctx, "owner", rec.ID)
	require.NoError(t, err, "reads fall back to the local mirror")
	assert.Equal(t, rec.ID, got.ID)
}

func TestUpdateRecord(t *testing.T) {
	svc, remote, _ := newHabitService(t)
	ctx := context.Background()
	rec := seed(t, svc, "u1", habit.TypeExercise, 20, refNow)

	value := 45.0
	mood := "great"
	updated, err := svc.UpdateRecord(ctx, "u1", rec.ID, &habit.UpdateRecordRequest{Value: &value, Mood: &mood})
	require.NoError(t, err)
	assert.Equal(t, 45.0, updated.Value)
	require.NotNil(t, updated.Mood)
	assert.Equal(t, "great", *updated.Mood)

	stored, err := remote.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 45.0, stored.Value)

	negative := -3.0
	_, err = svc.UpdateRecord(ctx, "u1", rec.ID, &habit.UpdateRecordRequest{Value: &negative})
	assert.ErrorIs(t, err, habit.ErrValidation)

	_, err = svc.UpdateRecord(ctx, "u2", rec.ID, &habit.UpdateRecordRequest{Value: &value})
	assert.ErrorIs(t, err, habit.ErrForbidden)
}

func TestDeleteRecord(t *testing.T) {
	svc, remote, local := newHabitService(t)
	ctx := context.Background()
	rec := seed(t, svc, "u1", habit.TypeReading, 12, refNow)

	assert.ErrorIs(t, svc.DeleteRecord(ctx, "u2", rec.ID), habit.ErrForbidden)

	remote.setDown(true)
	assert.Error(t, svc.DeleteRecord(ctx, "u1", rec.ID), "deletes need the remote store")
	remote.setDown(false)

	require.NoError(t, svc.DeleteRecord(ctx, "u1", rec.ID))
	_, err := local.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, habit.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteRecord(ctx, "u1", rec.ID), habit.ErrNotFound)
}

func TestDeleteUnsyncedRecord(t *testing.T) {
	svc, remote, local := newHabitService(t)
	ctx := context.Background()

	remote.setDown(true)
	rec := seed(t, svc, "u1", habit.TypeWater, 300, refNow)
	remote.setDown(false)

	require.NoError(t, svc.DeleteRecord(ctx, "u1", rec.ID))
	_, err := local.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, habit.ErrNotFound)

	pending, err := local.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
