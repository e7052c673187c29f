package services

import (
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
)

// SeedDoctors is the initial directory: three approved listings and two pending ones.
func SeedDoctors() []models.Doctor {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sub := func(plan models.Plan, end time.Time) *models.Subscription {
		return &models.Subscription{Active: true, Plan: plan, StartDate: jan, EndDate: end, MemberSince: jan}
	}

	return []models.Doctor{
		{
			ID:           1,
			Name:         "Dr. Sarah Khoury",
			Specialty:    "Cardiology",
			Location:     "Paris, 16ème",
			Languages:    []string{"Arabic", "French", "English"},
			Phone:        "+33 1 XX XX XX XX",
			Email:        "sarah.khoury@example.com",
			Website:      "https://example.com",
			Rating:       4.9,
			Image:        "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?auto=format&fit=crop&q=80",
			Approved:     true,
			SubmittedBy:  models.SubmittedByAdmin,
			SubmittedAt:  jan,
			Subscription: sub(models.PlanMonthly, jan.AddDate(0, 1, 0)),
		},
		{
			ID:           2,
			Name:         "Dr. Michel Haddad",
			Specialty:    "Pediatrics",
			Location:     "Brussels, Ixelles",
			Languages:    []string{"Arabic", "French"},
			Phone:        "+32 2 XXX XX XX",
			Email:        "michel.haddad@example.com",
			Rating:       4.8,
			Image:        "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?auto=format&fit=crop&q=80",
			Approved:     true,
			SubmittedBy:  models.SubmittedByAdmin,
			SubmittedAt:  jan,
			Subscription: sub(models.PlanMonthly, jan.AddDate(0, 1, 0)),
		},
		{
			ID:           3,
			Name:         "Dr. Nadia Gemayel",
			Specialty:    "Dermatology",
			Location:     "Paris, 8ème",
			Languages:    []string{"Arabic", "French", "English"},
			Phone:        "+33 1 XX XX XX XX",
			Email:        "nadia.gemayel@example.com",
			Website:      "https://example.com",
			Rating:       4.7,
			Image:        "https://images.unsplash.com/photo-1594824476967-48c8b964273f?auto=format&fit=crop&q=80",
			Approved:     true,
			SubmittedBy:  models.SubmittedByAdmin,
			SubmittedAt:  jan,
			Subscription: sub(models.PlanYearly, jan.AddDate(1, 0, 0)),
		},
		{
			ID:          4,
			Name:        "Dr. Karim Abboud",
			Specialty:   "Orthopedics",
			Location:    "Paris, 15ème",
			Languages:   []string{"Arabic", "French"},
			Phone:       "+33 1 XX XX XX XX",
			Email:       "karim.abboud@example.com",
			Rating:      4.6,
			Image:       "https://images.unsplash.com/photo-1537368910025-700350fe46c7?auto=format&fit=crop&q=80",
			SubmittedBy: "affiliate",
			SubmittedAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          5,
			Name:        "Dr. Maya Khalil",
			Specialty:   "Gynecology",
			Location:    "Brussels, Uccle",
			Languages:   []string{"Arabic", "French", "English"},
			Phone:       "+32 2 XXX XX XX",
			Email:       "maya.khalil@example.com",
			Website:     "https://example.com",
			Rating:      4.9,
			Image:       "https://images.unsplash.com/photo-1527613426441-4da17471b66d?auto=format&fit=crop&q=80",
			SubmittedBy: "affiliate",
			SubmittedAt: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}
}
