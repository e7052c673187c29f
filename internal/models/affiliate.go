package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AffiliateStatus string

const (
	AffiliateActive   AffiliateStatus = "active"
	AffiliateInactive AffiliateStatus = "inactive"
)

type Affiliate struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"passwordHash"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	MonthlyEarnings decimal.Decimal `json:"monthlyEarnings"`
	ReferredDoctors int             `json:"referredDoctors"`
	ActiveReferrals int             `json:"activeReferrals"`
	JoinDate        time.Time       `json:"joinDate"`
	Status          AffiliateStatus `json:"status"`
}

// AffiliateView is the response shape; it never carries the password hash.
type AffiliateView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	MonthlyEarnings decimal.Decimal `json:"monthlyEarnings"`
	ReferredDoctors int             `json:"referredDoctors"`
	ActiveReferrals int             `json:"activeReferrals"`
	JoinDate        time.Time       `json:"joinDate"`
	Status          AffiliateStatus `json:"status"`
}

func (a Affiliate) View() AffiliateView {
	return AffiliateView{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		TotalEarnings:   a.TotalEarnings,
		MonthlyEarnings: a.MonthlyEarnings,
		ReferredDoctors: a.ReferredDoctors,
		ActiveReferrals: a.ActiveReferrals,
		JoinDate:        a.JoinDate,
		Status:          a.Status,
	}
}
