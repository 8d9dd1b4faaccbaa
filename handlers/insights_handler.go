package handlers

import (
	"context"
	"net/http"
	"time"

	"viveLasoAPasoAPI/services"
)

// External lookups get longer than the usual five seconds.
const insightsTimeout = 15 * time.Second

type InsightsHandler struct {
	insightsService *services.InsightsService
	userService     *services.UserService
}

func NewInsightsHandler(insightsService *services.InsightsService, userService *services.UserService) *InsightsHandler {
	return &InsightsHandler{
		insightsService: insightsService,
		userService:     userService,
	}
}

func (h *InsightsHandler) Weather(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), insightsTimeout)
	defer cancel()

	_, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	tip, err := h.insightsService.WeatherTip(ctx, r.URL.Query().Get("city"), settings.Language)
	if err != nil {
		respondWithServiceError(w, err, "weather tip")
		return
	}

	respondWithJSON(w, http.StatusOK, tip)
}

func (h *InsightsHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), insightsTimeout)
	defer cancel()

	if _, _, ok := callerSettings(ctx, w, r, h.userService); !ok {
		return
	}

	items, err := h.insightsService.Nutrition(ctx, r.URL.Query().Get("query"))
	if err != nil {
		respondWithServiceError(w, err, "nutrition lookup")
		return
	}

	respondWithJSON(w, http.StatusOK, items)
}

func (h *InsightsHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), insightsTimeout)
	defer cancel()

	userID, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	rec, err := h.insightsService.Recommendation(ctx, userID, settings)
	if err != nil {
		respondWithServiceError(w, err, "recommendation")
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}
