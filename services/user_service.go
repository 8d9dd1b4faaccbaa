package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"viveLasoAPasoAPI/internal/user"

	"go.uber.org/zap"
)

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// Settings are the profile values other services need. They fall back to
// defaults when the profile cannot be read.
type Settings struct {
	Language string
	Goals    user.DailyGoals
	Location *time.Location
}

// GetOrCreate returns the caller's profile, creating it from the token
// identity on first use.
func (s *UserService) GetOrCreate(ctx context.Context, identity *user.CreateUserRequest) (*user.User, error) {
	u, err := s.repo.GetUser(ctx, identity.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now().UTC()
	u = &user.User{
		ID:                  identity.ID,
		Email:               identity.Email,
		Name:                identity.Name,
		Avatar:              identity.Avatar,
		CreatedAt:           now,
		UpdatedAt:           now,
		Language:            user.LanguageSpanish,
		DailyGoals:          user.DefaultDailyGoals(),
		NotificationEnabled: true,
	}
	if u.Name == "" {
		u.Name, _, _ = strings.Cut(u.Email, "@")
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		// A concurrent first request may have created it already.
		if existing, gerr := s.repo.GetUser(ctx, identity.ID); gerr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	zap.L().Info("user profile created", zap.String("user_id", u.ID))
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, identity *user.CreateUserRequest, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.GetOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *UserService) RegisterDevice(ctx context.Context, identity *user.CreateUserRequest, req *user.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fmt.Errorf("%w: device token is required", user.ErrValidation)
	}
	if _, err := s.GetOrCreate(ctx, identity); err != nil {
		return err
	}
	if err := s.repo.AddDeviceToken(ctx, identity.ID, token); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *UserService) Settings(ctx context.Context, userID string) Settings {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			zap.L().Warn("failed to read profile settings", zap.String("user_id", userID), zap.Error(err))
		}
		return settingsOf(nil)
	}
	return settingsOf(u)
}

// settingsOf reads the settings off a profile; a nil profile gives the
// defaults.
func settingsOf(u *user.User) Settings {
	if u == nil {
		return Settings{
			Language: user.LanguageSpanish,
			Goals:    user.DefaultDailyGoals(),
			Location: time.UTC,
		}
	}
	return Settings{
		Language: user.NormalizeLanguage(u.Language),
		Goals:    u.DailyGoals.WithDefaults(),
		Location: u.Location(),
	}
}
