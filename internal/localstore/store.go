// Package localstore keeps a relational mirror of a user's habit records so
// history and stats stay available while the cloud store is unreachable.
package localstore

import (
	"context"
	"fmt"
	"time"

	"viveLasoAPasoAPI/internal/habit"
)

var ErrNotFound = fmt.Errorf("local: %w", habit.ErrNotFound)

type Store interface {
	Init(ctx context.Context) error
	// Save inserts or replaces the record with the same id.
	Save(ctx context.Context, rec habit.Record, synced bool) error
	Get(ctx context.Context, id string) (*habit.Record, error)
	Delete(ctx context.Context, id string) error
	// ListByDateRange returns records with from <= record_date <= to, newest first.
	ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]habit.Record, error)
	// ListUnsynced returns records never confirmed by the remote store. An
	// empty userID lists them for every user.
	ListUnsynced(ctx context.Context, userID string) ([]habit.Record, error)
	MarkSynced(ctx context.Context, ids []string) error
	Ping(ctx context.Context) error
	Close() error
}
