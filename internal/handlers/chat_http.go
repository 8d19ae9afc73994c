package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/chat"
)

// chatMessageLimit caps a chat request body or WebSocket frame.
const chatMessageLimit = 64 * 1024

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers one message through the configured provider.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.MethodNotAllowed(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, chatMessageLimit)
	var req ChatRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Message too large"})
		return
	}
	if err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "No message provided"})
		return
	}

	reply, err := h.reply(r, req.Message)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get a reply",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (h *Handler) reply(r *http.Request, message string) (string, error) {
	reply, err := h.chat.Reply(r.Context(), strings.TrimSpace(message))
	if err != nil {
		fields := []zap.Field{zap.String("provider", h.chat.Name()), zap.Error(err)}
		var upstream *chat.UpstreamError
		if errors.As(err, &upstream) && upstream.Status != 0 {
			fields = append(fields, zap.Int("upstream_status", upstream.Status), zap.String("upstream_body", upstream.Body))
		}
		h.log.Error("chat reply failed", fields...)
		return "", err
	}
	return reply, nil
}
