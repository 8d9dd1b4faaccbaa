package habit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeWater      Type = "WATER"
	TypeSleep      Type = "SLEEP"
	TypeExercise   Type = "EXERCISE"
	TypeSteps      Type = "STEPS"
	TypeNutrition  Type = "NUTRITION"
	TypeMeditation Type = "MEDITATION"
	TypeReading    Type = "READING"
)

// AllTypes lists every tracked habit type in display order.
var AllTypes = []Type{
	TypeWater,
	TypeSleep,
	TypeExercise,
	TypeSteps,
	TypeNutrition,
	TypeMeditation,
	TypeReading,
}

var defaultUnits = map[Type]string{
	TypeWater:      "ml",
	TypeSleep:      "hours",
	TypeExercise:   "minutes",
	TypeSteps:      "steps",
	TypeNutrition:  "kcal",
	TypeMeditation: "minutes",
	TypeReading:    "pages",
}

var (
	ErrInvalidType = errors.New("invalid habit type")
	ErrValidation  = errors.New("invalid habit record")
	ErrNotFound    = errors.New("habit record not found")
	ErrForbidden   = errors.New("habit record belongs to another user")
)

// ParseType accepts any casing of a known habit type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := defaultUnits[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

func (t Type) Valid() bool {
	_, ok := defaultUnits[t]
	return ok
}

// DefaultUnit returns the unit stored when a record is submitted without one.
func (t Type) DefaultUnit() string {
	return defaultUnits[t]
}

type Record struct {
	ID         string    `json:"id" firestore:"-"`
	UserID     string    `json:"userId" firestore:"user_id"`
	HabitType  Type      `json:"habitType" firestore:"habit_type"`
	Value      float64   `json:"value" firestore:"value"`
	Unit       string    `json:"unit" firestore:"unit"`
	Notes      *string   `json:"notes,omitempty" firestore:"notes"`
	Mood       *string   `json:"mood,omitempty" firestore:"mood"`
	RecordDate time.Time `json:"recordDate" firestore:"record_date"`
	CreatedAt  time.Time `json:"createdAt" firestore:"created_at"`
}
