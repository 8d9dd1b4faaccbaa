package habit

import (
	"fmt"
	"time"
)

type CreateRecordRequest struct {
	HabitType  string     `json:"habitType"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	Mood       *string    `json:"mood,omitempty"`
	RecordDate *time.Time `json:"recordDate,omitempty"`
}

type UpdateRecordRequest struct {
	Value      *float64   `json:"value,omitempty"`
	Unit       *string    `json:"unit,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	Mood       *string    `json:"mood,omitempty"`
	RecordDate *time.Time `json:"recordDate,omitempty"`
}

// ListQuery narrows a user's history. Zero values mean no filter.
type ListQuery struct {
	Type  Type
	From  time.Time
	To    time.Time
	Limit int
}

type SyncResult struct {
	Synced  int `json:"synced"`
	Pending int `json:"pending"`
}

// Validate checks the request and returns the parsed habit type.
func (r *CreateRecordRequest) Validate() (Type, error) {
	t, err := ParseType(r.HabitType)
	if err != nil {
		return "", err
	}
	if r.Value < 0 {
		return "", fmt.Errorf("%w: value must not be negative", ErrValidation)
	}
	return t, nil
}

// Apply copies the set fields onto rec.
func (r *UpdateRecordRequest) Apply(rec *Record) error {
	if r.Value != nil {
		if *r.Value < 0 {
			return fmt.Errorf("%w: value must not be negative", ErrValidation)
		}
		rec.Value = *r.Value
	}
	if r.Unit != nil && *r.Unit != "" {
		rec.Unit = *r.Unit
	}
	if r.Notes != nil {
		rec.Notes = r.Notes
	}
	if r.Mood != nil {
		rec.Mood = r.Mood
	}
	if r.RecordDate != nil && !r.RecordDate.IsZero() {
		rec.RecordDate = r.RecordDate.UTC()
	}
	return nil
}
