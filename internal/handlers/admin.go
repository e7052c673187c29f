package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
)

const maxImportSize = 10 << 20 // 10MB

// period resolves ?period=&start=&end= against the handler clock.
func (h *Handler) period(r *http.Request) services.Period {
	q := r.URL.Query()
	return services.ResolvePeriod(q.Get("period"), q.Get("start"), q.Get("end"), h.clock())
}

func (h *Handler) AdminOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	o, err := h.Reports.AdminOverview(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"overview": o})
}

// AllDoctors lists every doctor, approved and pending.
func (h *Handler) AllDoctors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	doctors, err := h.Doctors.All(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctors": doctors, "count": len(doctors)})
}

func (h *Handler) PendingDoctors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	doctors, err := h.Doctors.Pending(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctors": doctors, "count": len(doctors)})
}

func (h *Handler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var in services.DoctorInput
	if !decodeJSON(w, r, &in) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.CreateByAdmin(ctx, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Doctor created", map[string]interface{}{"doctor": doctor})
}

func (h *Handler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.Approve(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Doctor approved", map[string]interface{}{"doctor": doctor})
}

func (h *Handler) HideDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Doctors.Hide(ctx, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Doctor hidden", map[string]interface{}{"doctor": doctor})
}

// RejectDoctor deletes a pending listing.
func (h *Handler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Doctors.Reject(ctx, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Doctor rejected", nil)
}

// ImportDoctors reads a multipart "file" (.csv or .xlsx) and adds its rows as pending doctors.
func (h *Handler) ImportDoctors(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	rows, err := services.ReadSheet(file, header.Filename)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	inputs, err := services.ParseDoctorRows(rows)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	result, err := h.Doctors.Import(ctx, inputs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, strconv.Itoa(len(result.Imported))+" doctors imported", map[string]interface{}{
		"imported": result.Imported,
		"skipped":  result.Skipped,
	})
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) SetDoctorCredentials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Auth.SetDoctorCredentials(ctx, id, req.Email, req.Password); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Credentials saved", nil)
}

type SubscriptionRequest struct {
	Active bool        `json:"active"`
	Plan   models.Plan `json:"plan"`
}

func (h *Handler) SetDoctorSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	doctor, err := h.Subscriptions.SetActive(ctx, id, req.Active, req.Plan, h.clock())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Subscription updated", map[string]interface{}{"doctor": doctor})
}

func (h *Handler) ListAffiliates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	affiliates, err := h.Affiliates.List(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	views := make([]models.AffiliateView, 0, len(affiliates))
	for _, a := range affiliates {
		views = append(views, a.View())
	}
	summary, err := h.Affiliates.Summary(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"affiliates": views, "summary": summary})
}

type AffiliateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) CreateAffiliate(w http.ResponseWriter, r *http.Request) {
	var req AffiliateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	a, err := h.Affiliates.Create(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Affiliate created", map[string]interface{}{
		"affiliate":    a.View(),
		"referralLink": h.Affiliates.ReferralLink(a.ID),
	})
}

type StatusRequest struct {
	Status models.AffiliateStatus `json:"status"`
}

func (h *Handler) SetAffiliateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	a, err := h.Affiliates.SetStatus(ctx, chiParam(r, "id"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Affiliate updated", map[string]interface{}{"affiliate": a.View()})
}

func (h *Handler) RecalculateAffiliates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.Affiliates.Recalculate(ctx, h.clock()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	summary, err := h.Affiliates.Summary(ctx)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Earnings recalculated", map[string]interface{}{"summary": summary})
}

// ReportSummary answers ?doctors=1,2&period=7d.
func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("doctors"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	sum, err := h.Reports.Summary(ctx, ids, h.period(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"report": sum})
}

func (h *Handler) ReportTop(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ctx, cancel := requestContext(r)
	defer cancel()

	rows, err := h.Reports.TopDoctors(ctx, n)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"doctors": rows})
}

// ReportTimeSeries covers all doctors when ?doctors= is empty.
func (h *Handler) ReportTimeSeries(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("doctors"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	period := h.period(r)
	series, err := h.Reports.TimeSeries(ctx, ids, period)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"period": period, "series": series})
}

// ReportExport streams the report as an attachment (?format=csv|xlsx).
func (h *Handler) ReportExport(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("doctors"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	file, err := h.Reports.Export(ctx, ids, h.period(r), r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}
