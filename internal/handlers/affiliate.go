package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
)

// AffiliateDashboard shows the signed-in affiliate's referrals and live earnings.
func (h *Handler) AffiliateDashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	ctx, cancel := requestContext(r)
	defer cancel()

	dash, err := h.Affiliates.Dashboard(ctx, user.AffiliateID, h.clock())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"dashboard": dash})
}
