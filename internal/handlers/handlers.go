package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

// Handler serves the HTTP API on top of the services.
type Handler struct {
	Auth          *services.AuthService
	Doctors       *services.DoctorService
	Reviews       *services.ReviewService
	Messages      *services.MessageService
	Tracking      *services.TrackingService
	Reports       *services.ReportService
	Affiliates    *services.AffiliateService
	Subscriptions *services.SubscriptionService
	Patients      *services.PatientService
	Consent       *services.ConsentService
	Hub           *services.Hub
	Uploader      services.ImageUploader // nil when Cloudinary is not configured
	Logger        *zap.Logger

	now func() time.Time
}

func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOK wraps payload fields in the {"success": true, ...} envelope.
func writeOK(w http.ResponseWriter, status int, message string, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

// writeServiceError maps service errors to status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "message": verr.Message, "field": verr.Field})
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "You are not allowed to do this")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrDuplicateReview),
		errors.Is(err, services.ErrEmailInUse),
		errors.Is(err, services.ErrAlreadyResponded),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, services.ErrNotApproved):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrGateway):
		writeError(w, http.StatusBadGateway, "Payment provider is unavailable, please try again later")
	case errors.Is(err, services.ErrUploadUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.Logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses a numeric chi URL parameter; a bad value answers 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// parseIDs reads a comma separated list of doctor ids ("1,2,3").
func parseIDs(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &utils.ValidationError{Field: "doctors", Message: "doctors must be a comma separated list of ids"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// sessionDoctorID is the listing of the signed-in doctor.
func sessionDoctorID(r *http.Request) (int64, bool) {
	u := middleware.UserFromContext(r.Context())
	if u == nil || u.Role != models.RoleDoctor || u.DoctorID == nil {
		return 0, false
	}
	return *u.DoctorID, true
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "time": h.clock().UTC()})
}
