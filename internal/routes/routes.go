package routes

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/handlers"
	"github.com/mindmate/mindmate-backend/internal/middleware"
)

type Options struct {
	Log            *zap.Logger
	AllowedOrigins []string
	Production     bool
	// Redis enables the shared fixed-window limiter on the auth routes.
	Redis         *redis.Client
	Sessions      middleware.SessionValidator
	SessionCookie string
}

// NewRouter wires middleware and every endpoint. Each canonical path also
// answers on its .php alias used by the legacy pages.
func NewRouter(h *handlers.Handler, opts Options) *chi.Mux {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Production {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	}
	r.Use(middleware.LoginRateLimit)
	r.Use(middleware.Identity(opts.Sessions, opts.SessionCookie))
	r.Use(middleware.ChatRateLimit)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Health check (no auth)
	r.Get("/health", h.Health)

	// Chat is open to anonymous visitors.
	for _, p := range []string{"/api/chat", "/api/chat.php"} {
		r.HandleFunc(p, h.Chat)
	}
	r.Get("/ws/chat", h.ChatWebSocket)
	r.Get("/api/exercises", h.ListExercises)

	r.Group(func(r chi.Router) {
		if opts.Redis != nil {
			r.Use(middleware.RedisRateLimit(opts.Redis))
		}
		for _, p := range []string{"/auth/register", "/auth/register.php"} {
			r.Post(p, h.Register)
		}
		for _, p := range []string{"/auth/login", "/auth/login.php"} {
			r.Post(p, h.Login)
		}
	})
	for _, p := range []string{"/auth/logout", "/auth/logout.php"} {
		r.Post(p, h.Logout)
	}
	r.Get("/auth/me", h.Me)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		for _, p := range []string{"/api/journal", "/api/journal.php"} {
			r.Get(p, h.ListJournal)
			r.Post(p, h.CreateJournal)
			r.Put(p, h.UpdateJournal)
			r.Delete(p, h.DeleteJournal)
		}
		r.Post("/api/journal/attachments", h.UploadAttachment)

		for _, p := range []string{"/api/mood", "/api/mood.php"} {
			r.Get(p, h.ListMoods)
			r.Post(p, h.CreateMood)
			r.Put(p, h.UpdateMood)
			r.Delete(p, h.DeleteMood)
		}
		r.Get("/api/mood/stats", h.MoodStats)

		r.Get("/api/exercises/sessions", h.ListExerciseSessions)
		r.Post("/api/exercises/sessions", h.CreateExerciseSession)
	})

	return r
}

