package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
)

func (h *Handler) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	dash, err := h.Patients.Dashboard(ctx, middleware.UserFromContext(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"dashboard": dash})
}

type ShareRequest struct {
	Network string `json:"network"`
}

// ShareDoctor records the share and returns the link for the chosen network.
func (h *Handler) ShareDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	url, err := h.Patients.Share(ctx, middleware.UserFromContext(r.Context()), id, req.Network)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"url": url})
}
