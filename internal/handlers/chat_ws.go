package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/middleware"
)

const (
	wsPongWait     = 90 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatFrame is sent by the server for every client message: Reply on
// success, Error otherwise.
type ChatFrame struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// ChatWebSocket serves the chat over a WebSocket. Messages are answered in
// order, one at a time.
func (h *Handler) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(chatMessageLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("chat websocket closed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		frame := h.answerFrame(r, data)
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

func (h *Handler) answerFrame(r *http.Request, data []byte) ChatFrame {
	var req ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ChatFrame{Error: "Invalid message"}
	}
	if strings.TrimSpace(req.Message) == "" {
		return ChatFrame{Error: "No message provided"}
	}
	// The upgrade request passed the HTTP limiter once; every frame may
	// still cost a provider call.
	if !middleware.AllowChat(r) {
		return ChatFrame{Error: middleware.ChatLimitMessage}
	}
	reply, err := h.reply(r, req.Message)
	if err != nil {
		return ChatFrame{Error: "Failed to get a reply"}
	}
	return ChatFrame{Reply: reply}
}
