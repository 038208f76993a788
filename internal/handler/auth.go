package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creatorverse/internal/service"
	"github.com/sakif/creatorverse/internal/session"
)

// AuthHandler serves registration, login for both roles, logout and the
// password reset flow.
//
// DEPENDENCY CHAIN:
//   - auth     *service.AuthService           → credentials, logout
//   - reset    *service.PasswordResetService  → reset tokens
//   - sessions *session.Manager               → session cookie
type AuthHandler struct {
	auth     *service.AuthService
	reset    *service.PasswordResetService
	sessions *session.Manager
	logger   *slog.Logger
}

func NewAuthHandler(
	auth *service.AuthService,
	reset *service.PasswordResetService,
	sessions *session.Manager,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		reset:    reset,
		sessions: sessions,
		logger:   logger,
	}
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// HandleRegister creates an account. The caller is not logged in.
//
// HTTP: POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, registerResponse{
		Message: "Account created successfully! Please login.",
		User:    userResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

type loginResponse struct {
	Message   string            `json:"message"`
	Principal session.Principal `json:"principal"`
}

// HandleLogin logs in as a user, or as an admin when the body says
// "role": "admin".
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, "")
}

// HandleAdminLogin is HandleLogin with the role fixed to admin.
//
// HTTP: POST /api/admin/login
func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, session.RoleAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, forced session.Role) {
	var req loginRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	role := session.Role(req.Role)
	switch {
	case forced != session.RoleAnonymous:
		role = forced
	case role == session.RoleAnonymous:
		role = session.RoleUser
	}

	p, err := h.auth.Login(r.Context(), req.Username, req.Password, role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// Drop whatever session the request came in with before issuing a new one.
	if handle, ok := session.HandleFromContext(r.Context()); ok {
		if err := h.auth.Logout(r.Context(), handle); err != nil {
			h.logger.Warn("clearing previous session", slog.String("error", err.Error()))
		}
	}

	if err := h.sessions.Establish(r.Context(), w, p); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, loginResponse{Message: "Logged in successfully", Principal: p})
}

// HandleLogout clears the session. Calling it without a session is fine.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	handle, _ := session.HandleFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), handle); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.sessions.ClearCookie(w)
	writeMessage(w, r, http.StatusOK, "You have been logged out.")
}

type meResponse struct {
	Authenticated bool              `json:"authenticated"`
	Principal     session.Principal `json:"principal"`
}

// HandleMe reports who the caller is. Anonymous callers get
// authenticated=false rather than an error.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p := session.FromContext(r.Context())
	writeJSON(w, r, http.StatusOK, meResponse{Authenticated: !p.IsAnonymous(), Principal: p})
}

type forgotPasswordResponse struct {
	Message   string `json:"message"`
	ResetURL  string `json:"reset_url"`
	ExpiresAt string `json:"expires_at"`
}

// HandleForgotPassword issues a reset link. There is no mail delivery; the
// link is returned in the response.
//
// HTTP: POST /api/auth/forgot-password
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	issue, err := h.reset.IssueReset(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, forgotPasswordResponse{
		Message:   "Password reset link generated. For demo purposes: " + issue.URL,
		ResetURL:  issue.URL,
		ExpiresAt: issue.ExpiresAt.Format(time.RFC3339),
	})
}

type validateResetResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
}

// HandleValidateReset checks a reset token before the form is shown.
//
// HTTP: GET /api/auth/reset-password/{token}
func (h *AuthHandler) HandleValidateReset(w http.ResponseWriter, r *http.Request) {
	user, err := h.reset.ValidateToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, validateResetResponse{Valid: true, Username: user.Username})
}

// HandleResetPassword sets the new password and retires the token.
//
// HTTP: POST /api/auth/reset-password/{token}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := bind(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	err := h.reset.ConsumeReset(r.Context(), chi.URLParam(r, "token"), req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Password reset successfully! Please login with your new password.")
}
