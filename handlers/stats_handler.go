package handlers

import (
	"context"
	"net/http"
	"time"

	"viveLasoAPasoAPI/middleware"
	"viveLasoAPasoAPI/services"
)

type StatsHandler struct {
	statsService *services.StatsService
	userService  *services.UserService
}

func NewStatsHandler(statsService *services.StatsService, userService *services.UserService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		userService:  userService,
	}
}

func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	summary, err := h.statsService.Weekly(ctx, userID, settings.Location)
	if err != nil {
		respondWithServiceError(w, err, "weekly stats")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// Daily serves ?from=&to=; both default to today.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	now := time.Now().In(settings.Location)
	from, to := now, now
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = parseDate(v, settings.Location, false); err != nil {
			respondWithServiceError(w, err, "daily stats")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = parseDate(v, settings.Location, true); err != nil {
			respondWithServiceError(w, err, "daily stats")
			return
		}
	}

	days, err := h.statsService.Daily(ctx, userID, from, to, settings.Location)
	if err != nil {
		respondWithServiceError(w, err, "daily stats")
		return
	}

	respondWithJSON(w, http.StatusOK, days)
}

func (h *StatsHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	today, err := h.statsService.Today(ctx, userID, settings.Goals, settings.Location)
	if err != nil {
		respondWithServiceError(w, err, "today stats")
		return
	}

	respondWithJSON(w, http.StatusOK, today)
}

// callerSettings resolves the caller and their profile settings; a zone on
// the request wins over the profile's. It writes the error response itself.
func callerSettings(ctx context.Context, w http.ResponseWriter, r *http.Request, users *services.UserService) (string, services.Settings, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return "", services.Settings{}, false
	}

	loc, err := requestLocation(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return "", services.Settings{}, false
	}

	settings := users.Settings(ctx, userID)
	if loc != nil {
		settings.Location = loc
	}
	return userID, settings, true
}
