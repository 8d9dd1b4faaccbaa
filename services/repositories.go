package services

import (
	"context"

	"viveLasoAPasoAPI/internal/clients/nutrition"
	"viveLasoAPasoAPI/internal/clients/weather"
	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/notification"
	"viveLasoAPasoAPI/internal/user"
)

// HabitRemote is the cloud copy of habit records. remotestore.HabitStore
// implements it.
type HabitRemote interface {
	Create(ctx context.Context, rec *habit.Record) error
	Update(ctx context.Context, rec *habit.Record) error
	Get(ctx context.Context, id string) (*habit.Record, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, userID string, q habit.ListQuery) ([]habit.Record, error)
}

// UserRepository is implemented by remotestore.UserStore.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error
	UpdateUser(ctx context.Context, u *user.User) error
	AddDeviceToken(ctx context.Context, id, token string) error
	RemoveDeviceToken(ctx context.Context, id, token string) error
	ListReminderCandidates(ctx context.Context) ([]user.User, error)
}

type WeatherClient interface {
	Current(ctx context.Context, city string) (*weather.Current, error)
}

type NutritionClient interface {
	Lookup(ctx context.Context, query string) ([]nutrition.Item, error)
}

type ChatClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type PushSender interface {
	Send(ctx context.Context, p notification.Push) (notification.Result, error)
}

type recordLister interface {
	ListRecords(ctx context.Context, userID string, q habit.ListQuery) ([]habit.Record, error)
}
