package handlers

import (
	"net/http"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
)

// ListDoctors is the public directory (?city=&specialty=&language=).
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, cancel := requestContext(r)
	defer cancel()

	doctors, err := h.Doctors.Search(ctx, services.DirectoryFilter{
		City:      q.Get("city"),
		Specialty: q.Get("specialty"),
		Language:  q.Get("language"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctors": doctors, "count": len(doctors)})
}

// GetDoctor returns an approved listing. Admins and the doctor themselves also see pending ones.
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	var (
		doctor *models.Doctor
		err    error
	)
	own, _ := sessionDoctorID(r)
	if middleware.UserFromContext(r.Context()).HasRole(models.RoleAdmin) || own == id {
		doctor, err = h.Doctors.Get(ctx, id)
	} else {
		doctor, err = h.Doctors.GetPublic(ctx, id)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctor": doctor})
}

// SubmitDoctor is the public "add a doctor" form; ?ref= carries the affiliate id.
func (h *Handler) SubmitDoctor(w http.ResponseWriter, r *http.Request) {
	var in services.DoctorInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.Submit(ctx, in, r.URL.Query().Get("ref"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Thank you! The listing will be visible once approved.", map[string]interface{}{"doctor": doctor})
}

type TrackRequest struct {
	Type models.EventType `json:"type"`
}

func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req TrackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	clicks, err := h.Tracking.Track(ctx, id, req.Type)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"clicks": clicks})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
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
	writeOK(w, http.StatusOK, "", map[string]interface{}{
		"reviews": reviews,
		"average": services.AverageRating(reviews),
	})
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	review, err := h.Reviews.Submit(ctx, middleware.UserFromContext(r.Context()), id, req.Rating, req.Comment)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Review submitted", map[string]interface{}{"review": review})
}

func (h *Handler) EditReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	review, err := h.Reviews.Edit(ctx, middleware.UserFromContext(r.Context()), id, chiParam(r, "reviewID"), req.Rating, req.Comment)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Review updated", map[string]interface{}{"review": review})
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Reviews.Delete(ctx, middleware.UserFromContext(r.Context()), id, chiParam(r, "reviewID")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Review deleted", nil)
}

type MessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req MessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	msg, err := h.Messages.Send(ctx, middleware.UserFromContext(r.Context()), id, req.Content)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Message sent", map[string]interface{}{"data": msg})
}
