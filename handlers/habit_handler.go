package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"viveLasoAPasoAPI/internal/habit"
	"viveLasoAPasoAPI/middleware"
	"viveLasoAPasoAPI/services"

	"github.com/gorilla/mux"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type HabitHandler struct {
	habitService *services.HabitService
	userService  *services.UserService
}

func NewHabitHandler(habitService *services.HabitService, userService *services.UserService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
		userService:  userService,
	}
}

func (h *HabitHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.CreateRecordRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.habitService.CreateRecord(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "create habit record")
		return
	}

	respondWithJSON(w, http.StatusCreated, rec)
}

// ListRecords serves ?type=&from=&to=&limit=, newest first. Bare days in
// from and to are read in the caller's zone.
func (h *HabitHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, settings, ok := callerSettings(ctx, w, r, h.userService)
	if !ok {
		return
	}

	q, err := parseListQuery(r, settings.Location)
	if err != nil {
		respondWithServiceError(w, err, "list habit records")
		return
	}

	records, err := h.habitService.ListRecords(ctx, userID, q)
	if err != nil {
		respondWithServiceError(w, err, "list habit records")
		return
	}

	respondWithJSON(w, http.StatusOK, records)
}

func (h *HabitHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	rec, err := h.habitService.GetRecord(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "get habit record")
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

func (h *HabitHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req habit.UpdateRecordRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.habitService.UpdateRecord(ctx, userID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, err, "update habit record")
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

func (h *HabitHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.habitService.DeleteRecord(ctx, userID, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err, "delete habit record")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) SyncPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	res, err := h.habitService.SyncPending(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "sync habit records")
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

func parseListQuery(r *http.Request, loc *time.Location) (habit.ListQuery, error) {
	q := habit.ListQuery{Limit: defaultListLimit}
	values := r.URL.Query()
	if loc == nil {
		loc = time.UTC
	}

	var err error

	if v := values.Get("type"); v != "" {
		t, err := habit.ParseType(v)
		if err != nil {
			return q, err
		}
		q.Type = t
	}
	if v := values.Get("from"); v != "" {
		if q.From, err = parseDate(v, loc, false); err != nil {
			return q, err
		}
	}
	if v := values.Get("to"); v != "" {
		if q.To, err = parseDate(v, loc, true); err != nil {
			return q, err
		}
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, badRequestf("from must not be after to")
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, badRequestf("limit must be a positive integer")
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		q.Limit = n
	}
	return q, nil
}
