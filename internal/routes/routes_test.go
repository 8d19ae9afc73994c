package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/chat"
	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/database"
	"github.com/mindmate/mindmate-backend/internal/handlers"
	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
)

type memoryExerciseLog struct {
	mu       sync.Mutex
	sessions []models.ExerciseSession
}

func (m *memoryExerciseLog) Record(_ context.Context, s *models.ExerciseSession) error {
	ex, ok := services.FindExercise(s.ExerciseID)
	if !ok {
		return services.ErrUnknownExercise
	}
	s.Category = ex.Category
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memoryExerciseLog) List(_ context.Context, userID int64, _, _ int64) ([]models.ExerciseSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ExerciseSession{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	count   func() int
}

// clientSeq numbers request addresses across every test server in the
// package; the per-IP limiters are process-wide.
var clientSeq atomic.Int64

func nextClientIP() string {
	n := clientSeq.Add(1)
	return fmt.Sprintf("10.%d.%d.%d", n/62500%250+1, n/250%250, n%250+1)
}

func newTestServer(t *testing.T, exercises handlers.ExerciseLog) *testServer {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQL(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitTables(ctx, db, database.DriverSQLite))

	cfg := &config.Config{
		SessionCookie: "mindmate_session",
		SessionTTL:    time.Hour,
		LoginRedirect: "/pages/chat.php",
	}
	provider, err := chat.NewProvider(ctx, config.ChatConfig{
		Provider:            config.ProviderRules,
		ConfidenceThreshold: 0.7,
		Seed:                1,
	}, zap.NewNop())
	require.NoError(t, err)

	sessions := services.NewJWTSessionStore("test-secret", time.Hour)
	deps := handlers.Deps{
		Config:    cfg,
		Users:     services.NewUserService(db, database.DriverSQLite),
		Journals:  services.NewJournalService(db, database.DriverSQLite),
		Moods:     services.NewMoodService(db, database.DriverSQLite),
		Sessions:  sessions,
		Chat:      provider,
		Exercises: exercises,
	}
	h := handlers.New(deps)

	router := NewRouter(h, Options{
		AllowedOrigins: []string{"*"},
		Sessions:       sessions,
		SessionCookie:  cfg.SessionCookie,
	})
	count := func() int {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
		return n
	}
	return &testServer{t: t, handler: router, count: count}
}

// do sends one request from a fresh client address so the per-IP limiters
// never interfere with the flow under test.
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload string
	switch b := body.(type) {
	case nil:
	case string:
		payload = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = nextClientIP() + ":4000"
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "correct horse",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decode(s.t, rec)["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/api/chat", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())

	for _, body := range []any{`{}`, map[string]string{"message": "   "}, `not json`} {
		rec = s.do(http.MethodPost, "/api/chat", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"No message provided"}`, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/api/chat.php", "", map[string]string{"message": "I feel so anxious about my exams"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["reply"])

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Origin", "https://mindmate.example")
	req.RemoteAddr = nextClientIP() + ":4000"
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	huge := strings.Repeat("a", 70*1024)
	rec = s.do(http.MethodPost, "/api/chat", "", map[string]string{"message": huge})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Message too large"}`, rec.Body.String())
}

func TestChatWebSocketIsRateLimitedPerFrame(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	header := http.Header{"X-Real-Ip": {nextClientIP()}}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	send := func(msg string) handlers.ChatFrame {
		t.Helper()
		require.NoError(t, conn.WriteJSON(handlers.ChatRequest{Message: msg}))
		var frame handlers.ChatFrame
		require.NoError(t, conn.ReadJSON(&frame))
		return frame
	}

	assert.Equal(t, "No message provided", send("  ").Error)

	// Anonymous callers share the HTTP chat budget of five messages.
	for i := 0; i < 5; i++ {
		frame := send("hello there")
		require.Empty(t, frame.Error, "frame %d", i)
		assert.NotEmpty(t, frame.Reply)
	}
	limited := send("hello again")
	assert.Empty(t, limited.Reply)
	assert.Equal(t, "Too many chat messages. Please slow down.", limited.Error)
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		body map[string]string
		msg  string
	}{
		{map[string]string{"email": "a@example.com", "password": "longenough"}, "All fields are required"},
		{map[string]string{"name": "A", "email": "not-an-email", "password": "longenough"}, "Invalid email format"},
		{map[string]string{"name": "A", "email": "a@example.com", "password": "short"}, "Password must be at least 8 characters"},
	}
	for _, tc := range cases {
		rec := s.do(http.MethodPost, "/auth/register", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, tc.msg, decode(t, rec)["message"])
	}

	s.register("dup@example.com")
	rec := s.do(http.MethodPost, "/auth/register.php", "", map[string]string{
		"name": "Again", "email": "DUP@example.com", "password": "another pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	dup := decode(t, rec)
	assert.Equal(t, false, dup["success"])
	assert.Equal(t, "Email already exists", dup["message"])
	assert.Equal(t, "Email already exists", dup["error"])
	assert.Equal(t, 1, s.count())
}

func TestLoginLogoutAndMe(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("login@example.com")

	rec := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "login@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["message"])

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "login@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)
	assert.NotEmpty(t, rec.Result().Cookies())

	me := decode(t, s.do(http.MethodGet, "/auth/me", token, nil))
	assert.Equal(t, true, me["logged_in"])
	assert.Equal(t, "login@example.com", me["user"].(map[string]any)["email"])

	rec = s.do(http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	me = decode(t, s.do(http.MethodGet, "/auth/me", token, nil))
	assert.Equal(t, false, me["logged_in"])
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/journal", token, nil).Code)
}

func TestFormLoginRedirects(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("form@example.com")

	form := url.Values{"email": {"form@example.com"}, "password": {"correct horse"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login.php", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = nextClientIP() + ":4000"
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pages/chat.php", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "mindmate_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestJournalRoundTripAndOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("alice@example.com")
	bob := s.register("bob@example.com")

	rec := s.do(http.MethodGet, "/api/journal", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/journal", alice, map[string]string{"title": "Day one"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Content is required","error":"Content is required"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/journal.php", alice, map[string]string{"content": "Walked by the river"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Entry saved successfully", body["message"])
	entry := body["entry"].(map[string]any)
	assert.Equal(t, "Journal Entry", entry["title"])
	assert.Equal(t, "neutral", entry["mood"])
	id := entry["id"].(string)

	list := decode(t, s.do(http.MethodGet, "/api/journal", alice, nil))
	assert.Equal(t, true, list["success"])
	assert.Len(t, list["entries"], 1)

	update := map[string]string{"id": id, "title": "Evening", "content": "Changed", "mood": "calm"}
	rec = s.do(http.MethodPut, "/api/journal", bob, update)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Entry not found or not owned by current user", decode(t, rec)["message"])

	rec = s.do(http.MethodDelete, "/api/journal", bob, map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Entry not found or not owned by current user", decode(t, rec)["error"])

	rec = s.do(http.MethodPut, "/api/journal", alice, map[string]string{"id": id, "title": "Evening"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", decode(t, rec)["message"])

	rec = s.do(http.MethodPut, "/api/journal", alice, map[string]string{"id": id, "title": "", "content": "Blank title is fine", "mood": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
	list = decode(t, s.do(http.MethodGet, "/api/journal", alice, nil))
	assert.Equal(t, "", list["entries"].([]any)[0].(map[string]any)["title"])

	rec = s.do(http.MethodPut, "/api/journal", alice, update)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode(t, rec), "error")

	list = decode(t, s.do(http.MethodGet, "/api/journal", alice, nil))
	assert.Equal(t, "Changed", list["entries"].([]any)[0].(map[string]any)["content"])

	rec = s.do(http.MethodDelete, "/api/journal", alice, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing entry ID", decode(t, rec)["message"])

	rec = s.do(http.MethodDelete, "/api/journal?id="+id, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	list = decode(t, s.do(http.MethodGet, "/api/journal", alice, nil))
	assert.Empty(t, list["entries"])
}

func TestJournalClientIDSync(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("sync@example.com")

	for _, content := range []string{"offline draft", "offline final"} {
		rec := s.do(http.MethodPost, "/api/journal", token, map[string]string{"id": "local-42", "content": content})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	list := decode(t, s.do(http.MethodGet, "/api/journal", token, nil))
	entries := list["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "offline final", entries[0].(map[string]any)["content"])
}

func TestMoodFlow(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("mood-a@example.com")
	bob := s.register("mood-b@example.com")

	rec := s.do(http.MethodPost, "/api/mood", alice, map[string]string{"mood": "good"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Mood and mood value are required", decode(t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/mood.php", alice, map[string]any{"mood": "good", "moodValue": "4", "reflection": "Nice walk"})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode(t, rec)["entry"].(map[string]any)
	assert.Equal(t, "good", created["mood"])
	assert.EqualValues(t, 4, created["mood_level"])
	id := created["id"].(string)

	list := decode(t, s.do(http.MethodGet, "/api/mood?period=day", alice, nil))
	entries := list["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Nice walk", entries[0].(map[string]any)["notes"])

	list = decode(t, s.do(http.MethodGet, "/api/mood?period=week", bob, nil))
	assert.Empty(t, list["entries"])

	rec = s.do(http.MethodPut, "/api/mood", bob, map[string]any{"id": id, "moodValue": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Mood entry not found or not owned by current user", body["message"])
	assert.Equal(t, body["message"], body["error"])

	rec = s.do(http.MethodPut, "/api/mood", alice, map[string]any{"id": id, "moodValue": 7, "reflection": "Even better"})
	assert.Equal(t, http.StatusOK, rec.Code)
	list = decode(t, s.do(http.MethodGet, "/api/mood", alice, nil))
	assert.Equal(t, "amazing", list["entries"].([]any)[0].(map[string]any)["mood"])

	stats := decode(t, s.do(http.MethodGet, "/api/mood/stats?period=week", alice, nil))["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["count"])
	assert.EqualValues(t, 1, stats["streak_days"])

	rec = s.do(http.MethodDelete, "/api/mood", bob, map[string]any{"id": id})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodDelete, "/api/mood", alice, map[string]any{"id": id})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mood entry deleted successfully", decode(t, rec)["message"])
}

func TestExercises(t *testing.T) {
	s := newTestServer(t, &memoryExerciseLog{})
	token := s.register("ex@example.com")

	catalogue := decode(t, s.do(http.MethodGet, "/api/exercises?category=cbt", "", nil))
	assert.Len(t, catalogue["exercises"], 3)

	rec := s.do(http.MethodPost, "/api/exercises/sessions", token, map[string]any{"exercise_id": "levitation"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown exercise", decode(t, rec)["error"])

	rec = s.do(http.MethodPost, "/api/exercises/sessions", token, map[string]any{"exercise_id": "box-breathing", "duration_seconds": 300})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "breathing", decode(t, rec)["session"].(map[string]any)["category"])

	list := decode(t, s.do(http.MethodGet, "/api/exercises/sessions", token, nil))
	assert.EqualValues(t, 1, list["total"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/exercises/sessions", "", nil).Code)
}

func TestOptionalServicesAnswer503(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("none@example.com")

	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodGet, "/api/exercises/sessions", token, nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(http.MethodPost, "/api/journal/attachments", token, nil).Code)
}
