package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
)

// doctorID answers 403 when the session is not bound to a listing.
func doctorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := sessionDoctorID(r)
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{
			"success":  false,
			"message":  "Doctor account required",
			"redirect": "/",
		})
	}
	return id, ok
}

func (h *Handler) DoctorProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctor": doctor})
}

func (h *Handler) UpdateDoctorProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	var in services.DoctorInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.UpdateProfile(ctx, id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Profile updated", map[string]interface{}{"doctor": doctor})
}

type ImageRequest struct {
	URL string `json:"url"`
}

// UpdateDoctorImage stores a URL returned by UploadImage on the doctor's listing.
func (h *Handler) UpdateDoctorImage(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	var req ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.SetImage(ctx, id, req.URL)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Image updated", map[string]interface{}{"doctor": doctor})
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangeDoctorPassword ends the current session on success; the client has to log in again.
func (h *Handler) ChangeDoctorPassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if _, ok := doctorID(w, r); !ok {
		return
	}
	var req PasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Auth.ChangeDoctorPassword(ctx, user.Email, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Password changed, please log in again", map[string]interface{}{"redirect": "/login"})
}

func (h *Handler) DoctorReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	reviews, err := h.Reviews.List(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"reviews": reviews, "average": services.AverageRating(reviews)})
}

type ResponseRequest struct {
	Text string `json:"text"`
}

func (h *Handler) RespondToReview(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	var req ResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	review, err := h.Reviews.Respond(ctx, middleware.UserFromContext(r.Context()), id, chiParam(r, "reviewID"), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Response published", map[string]interface{}{"review": review})
}

func (h *Handler) DoctorInbox(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	msgs, err := h.Messages.Inbox(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	unread := 0
	for _, m := range msgs {
		if !m.IsRead {
			unread++
		}
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"messages": msgs, "unread": unread})
}

func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Messages.MarkRead(ctx, id, chiParam(r, "messageID")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Message marked as read", nil)
}

// DoctorAnalytics takes the same period parameters as the admin reports.
func (h *Handler) DoctorAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	out, err := h.Reports.DoctorAnalytics(ctx, id, h.period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"analytics": out})
}

type PlanRequest struct {
	Plan models.Plan `json:"plan"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	var req PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	sessionID, err := h.Subscriptions.Checkout(ctx, id, req.Plan)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"sessionId": sessionID})
}

func (h *Handler) ActivateSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	var req PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Subscriptions.Activate(ctx, id, req.Plan, h.clock())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Subscription activated", map[string]interface{}{"subscription": doctor.Subscription})
}

func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Subscriptions.Cancel(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Subscription cancelled", map[string]interface{}{"subscription": doctor.Subscription})
}
