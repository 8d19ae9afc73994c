package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
)

type ExerciseListResponse struct {
	Success   bool              `json:"success"`
	Exercises []models.Exercise `json:"exercises"`
}

type ExerciseSessionRequest struct {
	ExerciseID      string            `json:"exercise_id"`
	DurationSeconds models.FlexInt    `json:"duration_seconds"`
	Responses       map[string]string `json:"responses"`
}

type ExerciseSessionResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Session *models.ExerciseSession `json:"session"`
}

type ExerciseSessionListResponse struct {
	Success  bool                     `json:"success"`
	Sessions []models.ExerciseSession `json:"sessions"`
	Total    int64                    `json:"total"`
}

// ListExercises handles GET /api/exercises?category=
func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	category := models.ExerciseCategory(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	writeJSON(w, http.StatusOK, ExerciseListResponse{Success: true, Exercises: services.Catalogue(category)})
}

// CreateExerciseSession handles POST /api/exercises/sessions.
func (h *Handler) CreateExerciseSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if h.exercises == nil {
		writeStatus(w, http.StatusServiceUnavailable, "Exercise log is not configured")
		return
	}
	var req ExerciseSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session := &models.ExerciseSession{
		UserID:          uid,
		ExerciseID:      strings.TrimSpace(req.ExerciseID),
		DurationSeconds: int(req.DurationSeconds.Value),
		Responses:       req.Responses,
	}
	err := h.exercises.Record(r.Context(), session)
	if errors.Is(err, services.ErrUnknownExercise) {
		writeStatus(w, http.StatusBadRequest, "Unknown exercise")
		return
	}
	if err != nil {
		h.internalError(w, r, "record exercise session", err)
		return
	}
	writeJSON(w, http.StatusOK, ExerciseSessionResponse{Success: true, Message: "Exercise session saved", Session: session})
}

// ListExerciseSessions handles GET /api/exercises/sessions?limit=&skip=
func (h *Handler) ListExerciseSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if h.exercises == nil {
		writeStatus(w, http.StatusServiceUnavailable, "Exercise log is not configured")
		return
	}
	q := r.URL.Query()
	limit := models.ParseFlexInt(q.Get("limit"))
	skip := models.ParseFlexInt(q.Get("skip"))

	sessions, total, err := h.exercises.List(r.Context(), uid, limit.Value, skip.Value)
	if err != nil {
		h.internalError(w, r, "list exercise sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, ExerciseSessionListResponse{Success: true, Sessions: sessions, Total: total})
}
