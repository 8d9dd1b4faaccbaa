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

	"viveLasoAPasoAPI/internal/user"
)

const usersCollection = "users"

var ErrUserNotFound = fmt.Errorf("remote: %w", user.ErrNotFound)

// UserStore keeps profiles in the users collection keyed by Firebase UID.
type UserStore struct {
	client *firestore.Client
}

func NewUserStore(client *firestore.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", id, err)
	}

	var u user.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user '%s': %w", id, err)
	}
	u.ID = snap.Ref.ID
	return &u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	if _, err := s.client.Collection(usersCollection).Doc(u.ID).Create(ctx, u); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user '%s' already exists: %w", u.ID, err)
		}
		return fmt.Errorf("failed to create user '%s': %w", u.ID, err)
	}
	return nil
}

func (s *UserStore) UpdateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	if _, err := s.client.Collection(usersCollection).Doc(u.ID).Update(ctx, profileUpdates(u)); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user '%s': %w", u.ID, err)
	}
	return nil
}

// profileUpdates lists the fields a profile edit may change. Identity fields
// and device_tokens are left to their own writers.
func profileUpdates(u *user.User) []firestore.Update {
	return []firestore.Update{
		{Path: "name", Value: u.Name},
		{Path: "avatar", Value: u.Avatar},
		{Path: "language", Value: u.Language},
		{Path: "daily_goals", Value: u.DailyGoals},
		{Path: "notification_enabled", Value: u.NotificationEnabled},
		{Path: "timezone", Value: u.Timezone},
		{Path: "updated_at", Value: u.UpdatedAt},
	}
}

func (s *UserStore) AddDeviceToken(ctx context.Context, id, token string) error {
	return s.updateTokens(ctx, id, firestore.ArrayUnion(token))
}

func (s *UserStore) RemoveDeviceToken(ctx context.Context, id, token string) error {
	return s.updateTokens(ctx, id, firestore.ArrayRemove(token))
}

func (s *UserStore) updateTokens(ctx context.Context, id string, op any) error {
	_, err := s.client.Collection(usersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "device_tokens", Value: op},
		{Path: "updated_at", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update device tokens for user '%s': %w", id, err)
	}
	return nil
}

// ListReminderCandidates returns users who opted in to push reminders.
func (s *UserStore) ListReminderCandidates(ctx context.Context) ([]user.User, error) {
	iter := s.client.Collection(usersCollection).Where("notification_enabled", "==", true).Documents(ctx)
	defer iter.Stop()

	var users []user.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reminder candidates: %w", err)
		}

		var u user.User
		if err := doc.DataTo(&u); err != nil {
			zap.L().Warn("skipping undecodable user", zap.String("doc_id", doc.Ref.ID), zap.Error(err))
			continue
		}
		u.ID = doc.Ref.ID
		users = append(users, u)
	}
	return users, nil
}
