package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

const maxAttachmentSize = 10 << 20 // 10MB

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadAttachment handles multipart uploads of journal images.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if h.attachments == nil {
		writeStatus(w, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize+1<<20)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		writeStatus(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "No file provided")
		return
	}
	file.Close()

	url, err := h.attachments.UploadJournalAttachment(r.Context(), fileHeader, uid)
	if err != nil {
		h.log.Error("upload attachment", zap.Int64("user_id", uid), zap.Error(err))
		writeStatus(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "File uploaded successfully", URL: url})
}
