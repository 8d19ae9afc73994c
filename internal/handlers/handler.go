package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/chat"
	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
)

// ExerciseLog stores completed exercise sessions.
type ExerciseLog interface {
	Record(ctx context.Context, session *models.ExerciseSession) error
	List(ctx context.Context, userID int64, limit, skip int64) ([]models.ExerciseSession, int64, error)
}

// AttachmentUploader stores journal attachments and returns their URL.
type AttachmentUploader interface {
	UploadJournalAttachment(ctx context.Context, fh *multipart.FileHeader, userID int64) (string, error)
}

// Deps are the collaborators of the HTTP handlers. Exercises and
// Attachments are optional; their endpoints answer 503 when nil.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	Users       *services.UserService
	Journals    *services.JournalService
	Moods       *services.MoodService
	Sessions    services.SessionStore
	Chat        chat.Provider
	Exercises   ExerciseLog
	Attachments AttachmentUploader
}

type Handler struct {
	cfg         *config.Config
	log         *zap.Logger
	users       *services.UserService
	journals    *services.JournalService
	moods       *services.MoodService
	sessions    services.SessionStore
	chat        chat.Provider
	exercises   ExerciseLog
	attachments AttachmentUploader
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:         d.Config,
		log:         log,
		users:       d.Users,
		journals:    d.Journals,
		moods:       d.Moods,
		sessions:    d.Sessions,
		chat:        d.Chat,
		exercises:   d.Exercises,
		attachments: d.Attachments,
	}
}

// StatusResponse is the envelope shared by most endpoints. Failures repeat
// the message under "error", which is the key browser clients display.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is used by the chat endpoints and the auth guard.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	resp := StatusResponse{Success: status < http.StatusBadRequest, Message: message}
	if !resp.Success {
		resp.Error = message
	}
	writeJSON(w, status, resp)
}

// internalError logs err and answers with a generic 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path))
	writeStatus(w, http.StatusInternalServerError, "Internal server error")
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}
