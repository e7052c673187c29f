package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
)

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// Login checks the credential sources and opens a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Identifier and password are required")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	user, token, err := h.Auth.Login(ctx, identifier, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeOK(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token":    token,
		"user":     user,
		"redirect": services.Home(user.Role),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.TokenFromRequest(r)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: middleware.SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeOK(w, http.StatusOK, "Logged out", nil)
}

// Me returns the session user, or 401 for anonymous callers.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"user": user, "redirect": services.Home(user.Role)})
}
