package remotestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"viveLasoAPasoAPI/internal/habit"
)

const habitsCollection = "habits"

var ErrNotFound = fmt.Errorf("remote: %w", habit.ErrNotFound)

// HabitStore keeps habit records in the habits collection, one document per
// record keyed by the record id.
type HabitStore struct {
	client *firestore.Client
}

func NewHabitStore(client *firestore.Client) *HabitStore {
	return &HabitStore{client: client}
}

func (s *HabitStore) Create(ctx context.Context, rec *habit.Record) error {
	if rec.ID == "" {
		return errors.New("habit record ID cannot be empty for Create operation")
	}
	_, err := s.client.Collection(habitsCollection).Doc(rec.ID).Create(ctx, rec)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("habit record '%s' already exists: %w", rec.ID, err)
		}
		return fmt.Errorf("failed to create habit record '%s': %w", rec.ID, err)
	}
	return nil
}

// Update overwrites the whole document.
func (s *HabitStore) Update(ctx context.Context, rec *habit.Record) error {
	if rec.ID == "" {
		return errors.New("habit record ID cannot be empty for Update operation")
	}
	if _, err := s.client.Collection(habitsCollection).Doc(rec.ID).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to update habit record '%s': %w", rec.ID, err)
	}
	return nil
}

func (s *HabitStore) Get(ctx context.Context, id string) (*habit.Record, error) {
	snap, err := s.client.Collection(habitsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit record '%s': %w", id, err)
	}
	return decodeRecord(snap)
}

// Delete succeeds for missing documents; Firestore does not report them.
func (s *HabitStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(habitsCollection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete habit record '%s': %w", id, err)
	}
	return nil
}

// Query filters a user's records by type and record_date range, newest first.
func (s *HabitStore) Query(ctx context.Context, userID string, q habit.ListQuery) ([]habit.Record, error) {
	query := s.client.Collection(habitsCollection).Where("user_id", "==", userID)
	if q.Type != "" {
		query = query.Where("habit_type", "==", string(q.Type))
	}
	if !q.From.IsZero() {
		query = query.Where("record_date", ">=", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("record_date", "<=", q.To)
	}
	query = query.OrderBy("record_date", firestore.Desc)
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := []habit.Record{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate habit records for user '%s': %w", userID, err)
		}

		rec, err := decodeRecord(doc)
		if err != nil {
			zap.L().Warn("skipping undecodable habit record",
				zap.String("doc_id", doc.Ref.ID),
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func decodeRecord(snap *firestore.DocumentSnapshot) (*habit.Record, error) {
	var rec habit.Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode habit record '%s': %w", snap.Ref.ID, err)
	}
	rec.ID = snap.Ref.ID
	rec.RecordDate = rec.RecordDate.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
