package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/pkg/clientip"
)

// consentClient keys the cookie choice by session user, else by client IP.
func consentClient(r *http.Request) string {
	if u := middleware.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return clientip.RealClientIP(r)
}

func (h *Handler) GetConsent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.Consent.Get(ctx, consentClient(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	// consent is null until the banner has been answered
	writeOK(w, http.StatusOK, "", map[string]interface{}{"consent": c})
}

type ConsentRequest struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) SetConsent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.Consent.Set(ctx, consentClient(r), req.Accepted)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Preference saved", map[string]interface{}{"consent": c})
}
