package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/internal/stats"
	"viveLasoAPasoAPI/internal/user"
	"viveLasoAPasoAPI/middleware"

	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20
	dayLayout    = "2006-01-02"
)

var errBadTimezone = errors.New("unknown time zone")

func identityFrom(ctx context.Context) (*user.CreateUserRequest, bool) {
	c, ok := middleware.GetClaims(ctx)
	if !ok || c.UID == "" {
		return nil, false
	}
	return &user.CreateUserRequest{ID: c.UID, Email: c.Email, Name: c.Name, Avatar: c.Picture}, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// requestLocation reads the caller's IANA zone from ?tz= or X-Timezone.
// It returns nil when neither is set.
func requestLocation(r *http.Request) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		name = r.Header.Get("X-Timezone")
	}
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errBadTimezone, name)
	}
	return loc, nil
}

// parseDate accepts a local day (YYYY-MM-DD) or an RFC3339 instant. A bare
// day resolves to its first instant, or its last when endOfDay is set.
func parseDate(s string, loc *time.Location, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dayLayout, s, loc); err == nil {
		if endOfDay {
			return stats.EndOfDay(t), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or RFC3339", habit.ErrValidation, s)
	}
	return t, nil
}

// respondWithServiceError maps domain errors to status codes. Anything
// unrecognised is logged and hidden behind a 500.
func respondWithServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, habit.ErrInvalidType),
		errors.Is(err, habit.ErrValidation),
		errors.Is(err, user.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, habit.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, habit.ErrNotFound), errors.Is(err, user.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, context.DeadlineExceeded):
		zap.L().Warn(op+" timed out", zap.Error(err))
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		zap.L().Error(op+" failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{habit.ErrValidation}, args...)...)
}
