package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mindmate/mindmate-backend/internal/middleware"
	"github.com/mindmate/mindmate-backend/internal/models"
	"github.com/mindmate/mindmate-backend/internal/services"
	"github.com/mindmate/mindmate-backend/pkg/utils"
)

// AuthRequest is accepted as JSON or as an HTML form post. The register
// page posts the name as full_name.
type AuthRequest struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

type MeResponse struct {
	Success  bool         `json:"success"`
	LoggedIn bool         `json:"logged_in"`
	User     *models.User `json:"user,omitempty"`
}

// parseAuthRequest reports whether the body was a form post, in which case
// a successful response is a redirect instead of JSON.
func parseAuthRequest(r *http.Request) (req AuthRequest, form bool, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err = json.NewDecoder(r.Body).Decode(&req)
		return req, false, err
	}
	if err = r.ParseForm(); err != nil {
		return req, true, err
	}
	req = AuthRequest{
		Name:     r.PostForm.Get("name"),
		FullName: r.PostForm.Get("full_name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	return req, true, nil
}

// Register creates an account and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, form, err := parseAuthRequest(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.FullName)
	}
	if name == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeStatus(w, http.StatusBadRequest, "All fields are required")
		return
	}
	email, err := utils.NormalizeEmail(req.Email)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	exists, err := h.users.EmailExists(ctx, email)
	if err != nil {
		h.internalError(w, r, "check email", err)
		return
	}
	if exists {
		writeStatus(w, http.StatusConflict, "Email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, r, "hash password", err)
		return
	}
	user, err := h.users.Create(ctx, name, email, hash)
	if errors.Is(err, services.ErrEmailExists) {
		writeStatus(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		h.internalError(w, r, "create user", err)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID))
	h.startSession(w, r, user, form, "Registration successful")
}

// Login verifies credentials and starts a session. Any previous session of
// the user is revoked when the Redis store is in use.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, form, err := parseAuthRequest(r)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeStatus(w, http.StatusBadRequest, "All fields are required")
		return
	}

	ctx := r.Context()
	user, err := h.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, services.ErrNotFound) {
		writeStatus(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.internalError(w, r, "load user", err)
		return
	}

	ok, needsRehash, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.log.Warn("unreadable password hash", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		writeStatus(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if needsRehash {
		if hash, err := utils.HashPassword(req.Password); err == nil {
			if err := h.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				h.log.Warn("rehash legacy password", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		}
	}

	h.startSession(w, r, user, form, "Login successful")
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, form bool, message string) {
	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, r, "create session", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	if form {
		http.Redirect(w, r, h.cfg.LoginRedirect, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: message, User: user, Token: token})
}

// Logout revokes the current session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r, h.cfg.SessionCookie); token != "" {
		if err := h.sessions.Invalidate(r.Context(), token); err != nil {
			h.internalError(w, r, "invalidate session", err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	writeStatus(w, http.StatusOK, "Logged out successfully")
}

// Me reports whether the request carries a live session.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, MeResponse{Success: true})
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		writeJSON(w, http.StatusOK, MeResponse{Success: true})
		return
	}
	if err != nil {
		h.internalError(w, r, "load user", err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{Success: true, LoggedIn: true, User: user})
}
