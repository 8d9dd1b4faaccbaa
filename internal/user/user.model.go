package user

import (
	"errors"
	"time"
)

const (
	LanguageSpanish = "es"
	LanguageEnglish = "en"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrValidation = errors.New("invalid profile")
)

// DailyGoals are the per-day targets shown on the progress screen.
type DailyGoals struct {
	Water    float64 `json:"water" firestore:"water"`
	Sleep    float64 `json:"sleep" firestore:"sleep"`
	Steps    float64 `json:"steps" firestore:"steps"`
	Exercise float64 `json:"exercise" firestore:"exercise"`
	Calories float64 `json:"calories" firestore:"calories"`
}

func DefaultDailyGoals() DailyGoals {
	return DailyGoals{
		Water:    2000,
		Sleep:    8,
		Steps:    10000,
		Exercise: 30,
		Calories: 2000,
	}
}

// WithDefaults replaces unset goals with the static defaults.
func (g DailyGoals) WithDefaults() DailyGoals {
	d := DefaultDailyGoals()
	if g.Water <= 0 {
		g.Water = d.Water
	}
	if g.Sleep <= 0 {
		g.Sleep = d.Sleep
	}
	if g.Steps <= 0 {
		g.Steps = d.Steps
	}
	if g.Exercise <= 0 {
		g.Exercise = d.Exercise
	}
	if g.Calories <= 0 {
		g.Calories = d.Calories
	}
	return g
}

type User struct {
	ID                  string     `json:"id" firestore:"-"`
	Email               string     `json:"email" firestore:"email"`
	Name                string     `json:"name" firestore:"name"`
	Avatar              string     `json:"avatar,omitempty" firestore:"avatar"`
	CreatedAt           time.Time  `json:"createdAt" firestore:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" firestore:"updated_at"`
	Language            string     `json:"language" firestore:"language"`
	DailyGoals          DailyGoals `json:"dailyGoals" firestore:"daily_goals"`
	NotificationEnabled bool       `json:"notificationEnabled" firestore:"notification_enabled"`
	Timezone            string     `json:"timezone,omitempty" firestore:"timezone"`
	DeviceTokens        []string   `json:"-" firestore:"device_tokens"`
}

// NormalizeLanguage maps anything that is not English to Spanish.
func NormalizeLanguage(lang string) string {
	if lang == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageSpanish
}

// Location resolves the profile's IANA time zone, UTC when unset or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
