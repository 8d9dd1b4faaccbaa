package user

import (
	"fmt"
	"time"
)

type CreateUserRequest struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type UpdateProfileRequest struct {
	Name                *string     `json:"name,omitempty"`
	Avatar              *string     `json:"avatar,omitempty"`
	Language            *string     `json:"language,omitempty"`
	DailyGoals          *DailyGoals `json:"dailyGoals,omitempty"`
	NotificationEnabled *bool       `json:"notificationEnabled,omitempty"`
	Timezone            *string     `json:"timezone,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform,omitempty"`
}

// Apply copies the set fields onto u. u is left untouched on error.
func (r *UpdateProfileRequest) Apply(u *User) error {
	if r.Timezone != nil && *r.Timezone != "" {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrValidation, *r.Timezone)
		}
	}
	if r.Name != nil && len(*r.Name) > 100 {
		return fmt.Errorf("%w: name is too long", ErrValidation)
	}

	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Avatar != nil {
		u.Avatar = *r.Avatar
	}
	if r.Language != nil {
		u.Language = NormalizeLanguage(*r.Language)
	}
	if r.DailyGoals != nil {
		u.DailyGoals = r.DailyGoals.WithDefaults()
	}
	if r.NotificationEnabled != nil {
		u.NotificationEnabled = *r.NotificationEnabled
	}
	if r.Timezone != nil {
		u.Timezone = *r.Timezone
	}
	return nil
}
