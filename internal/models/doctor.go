package models

import "time"

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

// Submission sources besides an affiliate id.
const (
	SubmittedByAdmin  = "admin"
	SubmittedByPublic = "public"
)

// Clicks is a cache of the analytics event log, see TrackingService.Reconcile.
type Clicks struct {
	Phone   int `json:"phone"`
	Email   int `json:"email"`
	Website int `json:"website"`
	Profile int `json:"profile"`
}

func (c Clicks) Total() int {
	return c.Phone + c.Email + c.Website + c.Profile
}

type Subscription struct {
	Active      bool      `json:"active"`
	Plan        Plan      `json:"plan"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	MemberSince time.Time `json:"memberSince"`
}

type Doctor struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Specialty string   `json:"specialty"`
	Location  string   `json:"location"`
	Languages []string `json:"languages"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
	Website   string   `json:"website,omitempty"`
	Image     string   `json:"image"`

	Approved bool    `json:"approved"`
	Clicks   Clicks  `json:"clicks"`
	Rating   float64 `json:"rating"` // round(mean(review ratings), 1)

	// "admin", "public" or the referring affiliate id
	SubmittedBy string    `json:"submittedBy"`
	SubmittedAt time.Time `json:"submittedAt"`

	Subscription *Subscription `json:"subscription,omitempty"`
}

// HasActiveSubscription is used by the affiliate earnings computation.
func (d *Doctor) HasActiveSubscription() bool {
	return d.Subscription != nil && d.Subscription.Active
}

// DoctorCredentials lets a doctor sign in. Joined to Doctor by DoctorID at login.
type DoctorCredentials struct {
	DoctorID     int64     `json:"doctorId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
