package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mindmate/mindmate-backend/internal/middleware"
	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
)

const entryNotOwned = "Entry not found or not owned by current user"

// JournalRequest covers create, update and delete bodies. On create, ID is
// the client-generated id used for offline sync; on update and delete it is
// the server id.
type JournalRequest struct {
	ID      models.FlexString `json:"id"`
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Mood    string            `json:"mood"`
}

// journalUpdateRequest tells a missing key apart from an empty value; an
// update needs every key present but accepts empty title and mood.
type journalUpdateRequest struct {
	ID      models.FlexString `json:"id"`
	Title   *string           `json:"title"`
	Content *string           `json:"content"`
	Mood    *string           `json:"mood"`
}

type JournalListResponse struct {
	Success bool                  `json:"success"`
	Entries []models.JournalEntry `json:"entries"`
}

type JournalEntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

// userID returns the logged-in user. RequireUser guarantees it on the
// protected routes; the 401 here only guards misrouting.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return id, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ListJournal handles GET /api/journal?limit=&skip=
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := models.ParseFlexInt(q.Get("limit"))
	skip := models.ParseFlexInt(q.Get("skip"))

	entries, err := h.journals.List(r.Context(), uid, int(limit.Value), int(skip.Value))
	if err != nil {
		h.internalError(w, r, "list journal entries", err)
		return
	}
	writeJSON(w, http.StatusOK, JournalListResponse{Success: true, Entries: entries})
}

// CreateJournal handles POST /api/journal.
func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req JournalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeStatus(w, http.StatusBadRequest, "Content is required")
		return
	}

	entry, err := h.journals.Save(r.Context(), uid, services.JournalInput{
		ClientID: string(req.ID),
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Mood:     strings.TrimSpace(req.Mood),
	})
	if err != nil {
		h.internalError(w, r, "save journal entry", err)
		return
	}
	writeJSON(w, http.StatusOK, JournalEntryResponse{Success: true, Message: "Entry saved successfully", Entry: entry})
}

// UpdateJournal handles PUT /api/journal.
func (h *Handler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req journalUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := models.ParseFlexInt(string(req.ID))
	if !id.Set || req.Title == nil || req.Content == nil || req.Mood == nil {
		writeStatus(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	err := h.journals.Update(r.Context(), uid, id.Value, strings.TrimSpace(*req.Title), *req.Content, strings.TrimSpace(*req.Mood))
	if errors.Is(err, services.ErrNotFound) {
		writeStatus(w, http.StatusNotFound, entryNotOwned)
		return
	}
	if err != nil {
		h.internalError(w, r, "update journal entry", err)
		return
	}
	writeStatus(w, http.StatusOK, "Entry updated successfully")
}

// DeleteJournal handles DELETE /api/journal with the id in the body or query.
func (h *Handler) DeleteJournal(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := entryID(r)
	if !ok {
		writeStatus(w, http.StatusBadRequest, "Missing entry ID")
		return
	}

	err := h.journals.Delete(r.Context(), uid, id)
	if errors.Is(err, services.ErrNotFound) {
		writeStatus(w, http.StatusNotFound, entryNotOwned)
		return
	}
	if err != nil {
		h.internalError(w, r, "delete journal entry", err)
		return
	}
	writeStatus(w, http.StatusOK, "Entry deleted successfully")
}

// entryID reads ?id= or a JSON body {"id": ...}.
func entryID(r *http.Request) (int64, bool) {
	if id := models.ParseFlexInt(r.URL.Query().Get("id")); id.Set {
		return id.Value, true
	}
	var body struct {
		ID models.FlexInt `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.ID.Set {
		return 0, false
	}
	return body.ID.Value, true
}
