package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/localstore"
	"viveLasoAPasoAPI/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HabitService writes records to the remote store first and mirrors them
// locally. A failed remote write leaves the record pending in the local
// store until SyncPending pushes it.
type HabitService struct {
	remote HabitRemote
	local  localstore.Store
	now    func() time.Time
}

func NewHabitService(remote HabitRemote, local localstore.Store) *HabitService {
	return &HabitService{remote: remote, local: local, now: time.Now}
}

func (s *HabitService) CreateRecord(ctx context.Context, userID string, req *habit.CreateRecordRequest) (*habit.Record, error) {
	t, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := habit.Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		HabitType:  t,
		Value:      req.Value,
		Unit:       req.Unit,
		Notes:      req.Notes,
		Mood:       req.Mood,
		RecordDate: now,
		CreatedAt:  now,
	}
	if rec.Unit == "" {
		rec.Unit = t.DefaultUnit()
	}
	if req.RecordDate != nil && !req.RecordDate.IsZero() {
		rec.RecordDate = req.RecordDate.UTC()
	}

	if err := s.persist(ctx, &rec, s.remote.Create, "create"); err != nil {
		return nil, err
	}

	metrics.HabitRecordsCreated.WithLabelValues(string(t)).Inc()
	return &rec, nil
}

// GetRecord returns the caller's record, from the local mirror when the
// remote store fails or has not seen it yet.
func (s *HabitService) GetRecord(ctx context.Context, userID, id string) (*habit.Record, error) {
	rec, err := s.remote.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, habit.ErrNotFound) {
			zap.L().Warn("remote get failed, reading local mirror", zap.String("record_id", id), zap.Error(err))
			metrics.LocalFallbacks.WithLabelValues("get").Inc()
		}
		local, lerr := s.local.Get(ctx, id)
		if lerr != nil {
			if errors.Is(lerr, habit.ErrNotFound) {
				return nil, habit.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get habit record: %w", lerr)
		}
		rec = local
	}

	if rec.UserID != userID {
		return nil, habit.ErrForbidden
	}
	return rec, nil
}

func (s *HabitService) UpdateRecord(ctx context.Context, userID, id string, req *habit.UpdateRecordRequest) (*habit.Record, error) {
	rec, err := s.GetRecord(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(rec); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, rec, s.remote.Update, "update"); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteRecord needs the remote store: there are no local tombstones, so an
// offline delete would come back on the next read.
func (s *HabitService) DeleteRecord(ctx context.Context, userID, id string) error {
	if _, err := s.GetRecord(ctx, userID, id); err != nil {
		return err
	}

	// A record that never synced exists only in the local mirror.
	if err := s.remote.Delete(ctx, id); err != nil && !errors.Is(err, habit.ErrNotFound) {
		return fmt.Errorf("failed to delete habit record: %w", err)
	}
	if err := s.local.Delete(ctx, id); err != nil && !errors.Is(err, habit.ErrNotFound) {
		zap.L().Warn("local mirror delete failed", zap.String("record_id", id), zap.Error(err))
	}
	return nil
}

// ListRecords returns the user's records newest first. Records still
// pending sync are merged in.
func (s *HabitService) ListRecords(ctx context.Context, userID string, q habit.ListQuery) ([]habit.Record, error) {
	records, err := s.remote.Query(ctx, userID, q)
	if err != nil {
		zap.L().Warn("remote query failed, reading local mirror", zap.String("user_id", userID), zap.Error(err))
		metrics.LocalFallbacks.WithLabelValues("list").Inc()
		return s.listLocal(ctx, userID, q)
	}

	pending, err := s.local.ListUnsynced(ctx, userID)
	if err != nil {
		zap.L().Warn("failed to read pending records", zap.String("user_id", userID), zap.Error(err))
		return records, nil
	}
	return mergeRecords(records, filterRecords(pending, q), q.Limit), nil
}

// SyncPending pushes the user's unsynced records to the remote store. A
// record that fails stays pending for the next call.
func (s *HabitService) SyncPending(ctx context.Context, userID string) (*habit.SyncResult, error) {
	pending, err := s.local.ListUnsynced(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}

	synced := make([]string, 0, len(pending))
	for i := range pending {
		rec := pending[i]
		if err := s.remote.Update(ctx, &rec); err != nil {
			zap.L().Warn("failed to sync habit record", zap.String("record_id", rec.ID), zap.Error(err))
			continue
		}
		synced = append(synced, rec.ID)
	}

	if len(synced) > 0 {
		if err := s.local.MarkSynced(ctx, synced); err != nil {
			return nil, fmt.Errorf("failed to mark records synced: %w", err)
		}
	}

	if len(pending) > 0 {
		zap.L().Info("habit records synced",
			zap.String("user_id", userID),
			zap.Int("synced", len(synced)),
			zap.Int("pending", len(pending)-len(synced)))
	}
	return &habit.SyncResult{Synced: len(synced), Pending: len(pending) - len(synced)}, nil
}

// persist runs the remote write, then mirrors the record locally. Only a
// failure of both stores is an error.
func (s *HabitService) persist(ctx context.Context, rec *habit.Record, remoteWrite func(context.Context, *habit.Record) error, op string) error {
	synced := true
	if err := remoteWrite(ctx, rec); err != nil {
		zap.L().Warn("remote write failed, keeping record pending",
			zap.String("op", op), zap.String("record_id", rec.ID), zap.Error(err))
		metrics.LocalFallbacks.WithLabelValues(op).Inc()
		synced = false
	}

	if err := s.local.Save(ctx, *rec, synced); err != nil {
		if !synced {
			return fmt.Errorf("failed to %s habit record: %w", op, err)
		}
		zap.L().Warn("local mirror write failed", zap.String("record_id", rec.ID), zap.Error(err))
	}
	return nil
}

func (s *HabitService) listLocal(ctx context.Context, userID string, q habit.ListQuery) ([]habit.Record, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = time.Unix(0, 0)
	}
	if to.IsZero() {
		to = s.now().AddDate(100, 0, 0)
	}

	records, err := s.local.ListByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list habit records: %w", err)
	}
	records = filterRecords(records, q)
	if q.Limit > 0 && len(records) > q.Limit {
		records = records[:q.Limit]
	}
	return records, nil
}

func filterRecords(records []habit.Record, q habit.ListQuery) []habit.Record {
	out := records[:0:0]
	for _, r := range records {
		if q.Type != "" && r.HabitType != q.Type {
			continue
		}
		if !q.From.IsZero() && r.RecordDate.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && r.RecordDate.After(q.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func mergeRecords(remote, pending []habit.Record, limit int) []habit.Record {
	if len(pending) == 0 {
		return remote
	}

	seen := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		seen[r.ID] = struct{}{}
	}
	merged := append([]habit.Record{}, remote...)
	for _, r := range pending {
		if _, ok := seen[r.ID]; !ok {
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RecordDate.After(merged[j].RecordDate)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
