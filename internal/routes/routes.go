package routes

import (
	"github.com/AnshRaj112/lebdoc-backend/internal/handlers"
	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// SetupRoutes registers the API. limiter may be nil (no Redis configured).
func SetupRoutes(r chi.Router, h *handlers.Handler, limiter *redis.Client) {
	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(h.Auth))
		r.Use(middleware.SubmissionRateLimit(limiter))

		// Auth
		r.Post("/api/auth/login", h.Login)
		r.Post("/api/auth/logout", h.Logout)
		r.Get("/api/auth/me", h.Me)

		// Public directory
		r.Get("/api/doctors", h.ListDoctors)
		r.Post("/api/doctors", h.SubmitDoctor)
		r.Get("/api/doctors/{id}", h.GetDoctor)
		r.Post("/api/doctors/{id}/events", h.TrackEvent)
		r.Get("/api/doctors/{id}/reviews", h.ListReviews)
		r.Post("/api/doctors/{id}/reviews", h.SubmitReview)
		r.Put("/api/doctors/{id}/reviews/{reviewID}", h.EditReview)
		r.Delete("/api/doctors/{id}/reviews/{reviewID}", h.DeleteReview)
		r.Post("/api/doctors/{id}/messages", h.SendMessage)

		// File upload routes
		r.Post("/api/upload", h.UploadImage)

		// Cookie banner
		r.Get("/api/consent", h.GetConsent)
		r.Post("/api/consent", h.SetConsent)

		// Doctor dashboard
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleDoctor))
			r.Get("/api/doctor/profile", h.DoctorProfile)
			r.Put("/api/doctor/profile", h.UpdateDoctorProfile)
			r.Put("/api/doctor/image", h.UpdateDoctorImage)
			r.Put("/api/doctor/password", h.ChangeDoctorPassword)
			r.Get("/api/doctor/reviews", h.DoctorReviews)
			r.Post("/api/doctor/reviews/{reviewID}/response", h.RespondToReview)
			r.Get("/api/doctor/messages", h.DoctorInbox)
			r.Put("/api/doctor/messages/{messageID}/read", h.MarkMessageRead)
			r.Get("/api/doctor/analytics", h.DoctorAnalytics)
			r.Post("/api/doctor/subscription/checkout", h.Checkout)
			r.Post("/api/doctor/subscription/activate", h.ActivateSubscription)
			r.Delete("/api/doctor/subscription", h.CancelSubscription)

			// WebSocket endpoint for review/message notifications
			r.Get("/ws/doctor", h.DoctorFeed)
		})

		// Guest / patient dashboard
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleGuest, models.RolePatient))
			r.Get("/api/patient/dashboard", h.PatientDashboard)
			r.Post("/api/doctors/{id}/share", h.ShareDoctor)
		})

		// Affiliate dashboard
		r.With(middleware.RequireRole(models.RoleAffiliate)).Get("/api/affiliate/dashboard", h.AffiliateDashboard)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/api/admin/overview", h.AdminOverview)
			r.Get("/api/admin/doctors", h.AllDoctors)
			r.Get("/api/admin/doctors/pending", h.PendingDoctors)
			r.Post("/api/admin/doctors", h.CreateDoctor)
			r.Post("/api/admin/doctors/import", h.ImportDoctors)
			r.Put("/api/admin/doctors/{id}/approve", h.ApproveDoctor)
			r.Put("/api/admin/doctors/{id}/hide", h.HideDoctor)
			r.Delete("/api/admin/doctors/{id}", h.RejectDoctor)
			r.Post("/api/admin/doctors/{id}/credentials", h.SetDoctorCredentials)
			r.Put("/api/admin/doctors/{id}/subscription", h.SetDoctorSubscription)

			r.Get("/api/admin/affiliates", h.ListAffiliates)
			r.Post("/api/admin/affiliates", h.CreateAffiliate)
			r.Post("/api/admin/affiliates/recalculate", h.RecalculateAffiliates)
			r.Put("/api/admin/affiliates/{id}/status", h.SetAffiliateStatus)

			r.Get("/api/admin/reports/summary", h.ReportSummary)
			r.Get("/api/admin/reports/top", h.ReportTop)
			r.Get("/api/admin/reports/timeseries", h.ReportTimeSeries)
			r.Get("/api/admin/reports/export", h.ReportExport)
		})
	})
}
