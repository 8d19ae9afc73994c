package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
)

const moodNotOwned = "Mood entry not found or not owned by current user"

// MoodRequest uses the field names of the mood tracker page.
type MoodRequest struct {
	ID         models.FlexInt `json:"id"`
	Mood       string         `json:"mood"`
	MoodValue  models.FlexInt `json:"moodValue"`
	Reflection string         `json:"reflection"`
}

type MoodListResponse struct {
	Success bool             `json:"success"`
	Entries []models.MoodLog `json:"entries"`
}

type MoodEntryResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Entry   *models.MoodLog `json:"entry"`
}

type MoodStatsResponse struct {
	Success bool              `json:"success"`
	Stats   *models.MoodStats `json:"stats"`
}

// ListMoods handles GET /api/mood?period=&limit=
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := models.ParseFlexInt(q.Get("limit"))

	logs, err := h.moods.List(r.Context(), uid, models.ParsePeriod(q.Get("period")), int(limit.Value))
	if err != nil {
		h.internalError(w, r, "list mood logs", err)
		return
	}
	writeJSON(w, http.StatusOK, MoodListResponse{Success: true, Entries: logs})
}

// CreateMood handles POST /api/mood.
func (h *Handler) CreateMood(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req MoodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Mood) == "" || !req.MoodValue.Set {
		writeStatus(w, http.StatusBadRequest, "Mood and mood value are required")
		return
	}

	entry, err := h.moods.Create(r.Context(), uid, int(req.MoodValue.Value), req.Reflection)
	if err != nil {
		h.internalError(w, r, "create mood log", err)
		return
	}
	writeJSON(w, http.StatusOK, MoodEntryResponse{Success: true, Message: "Mood entry saved successfully", Entry: entry})
}

// UpdateMood handles PUT /api/mood.
func (h *Handler) UpdateMood(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req MoodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.ID.Set || !req.MoodValue.Set {
		writeStatus(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	err := h.moods.Update(r.Context(), uid, req.ID.Value, int(req.MoodValue.Value), req.Reflection)
	if errors.Is(err, services.ErrNotFound) {
		writeStatus(w, http.StatusNotFound, moodNotOwned)
		return
	}
	if err != nil {
		h.internalError(w, r, "update mood log", err)
		return
	}
	writeStatus(w, http.StatusOK, "Mood entry updated successfully")
}

// DeleteMood handles DELETE /api/mood with the id in the body or query.
func (h *Handler) DeleteMood(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := entryID(r)
	if !ok {
		writeStatus(w, http.StatusBadRequest, "Missing entry ID")
		return
	}

	err := h.moods.Delete(r.Context(), uid, id)
	if errors.Is(err, services.ErrNotFound) {
		writeStatus(w, http.StatusNotFound, moodNotOwned)
		return
	}
	if err != nil {
		h.internalError(w, r, "delete mood log", err)
		return
	}
	writeStatus(w, http.StatusOK, "Mood entry deleted successfully")
}

// MoodStats handles GET /api/mood/stats?period=
func (h *Handler) MoodStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	stats, err := h.moods.Stats(r.Context(), uid, models.ParsePeriod(r.URL.Query().Get("period")))
	if err != nil {
		h.internalError(w, r, "mood stats", err)
		return
	}
	writeJSON(w, http.StatusOK, MoodStatsResponse{Success: true, Stats: stats})
}
