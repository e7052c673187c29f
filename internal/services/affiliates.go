package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Pricing holds plan prices and the affiliate commission rate.
type Pricing struct {
	Monthly    decimal.Decimal
	Yearly     decimal.Decimal
	Commission decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		Monthly:    decimal.NewFromInt(49),
		Yearly:     decimal.NewFromInt(499),
		Commission: decimal.RequireFromString("0.2"),
	}
}

var (
	twelve   = decimal.NewFromInt(12)
	monthLen = 30 * 24 * time.Hour
)

// Earnings is the commission from one set of referred doctors.
type Earnings struct {
	Monthly         decimal.Decimal `json:"monthly"`
	Total           decimal.Decimal `json:"total"`
	ReferredDoctors int             `json:"referredDoctors"`
	ActiveReferrals int             `json:"activeReferrals"`
}

// ComputeEarnings sums commissions over referrals with an active subscription. Monthly plans
// earn price*rate per elapsed 30-day month since the subscription started; yearly plans
// earn price*rate once. Amounts are rounded to 2 decimals.
func ComputeEarnings(referred []models.Doctor, p Pricing, now time.Time) Earnings {
	monthlyCut := p.Monthly.Mul(p.Commission)
	yearlyCut := p.Yearly.Mul(p.Commission)

	e := Earnings{Monthly: decimal.Zero, Total: decimal.Zero, ReferredDoctors: len(referred)}
	for _, d := range referred {
		if !d.HasActiveSubscription() {
			continue
		}
		e.ActiveReferrals++
		switch d.Subscription.Plan {
		case models.PlanYearly:
			e.Monthly = e.Monthly.Add(yearlyCut.Div(twelve))
			e.Total = e.Total.Add(yearlyCut)
		default:
			months := int64(now.Sub(d.Subscription.StartDate) / monthLen)
			if months < 0 {
				months = 0
			}
			e.Monthly = e.Monthly.Add(monthlyCut)
			e.Total = e.Total.Add(monthlyCut.Mul(decimal.NewFromInt(months)))
		}
	}
	e.Monthly = e.Monthly.Round(2)
	e.Total = e.Total.Round(2)
	return e
}

type AffiliateSummary struct {
	Active          int             `json:"active"`
	Total           int             `json:"total"`
	MonthlyEarnings decimal.Decimal `json:"monthlyEarnings"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
}

type AffiliateDashboard struct {
	Affiliate    models.AffiliateView `json:"affiliate"`
	Doctors      []models.Doctor      `json:"doctors"`
	Earnings     Earnings             `json:"earnings"`
	ReferralLink string               `json:"referralLink"`
}

type AffiliateService struct {
	store     store.Store
	doctors   *DoctorService
	pricing   Pricing
	publicURL string
	logger    *zap.Logger
	now       Clock

	mu sync.Mutex
}

func NewAffiliateService(s store.Store, doctors *DoctorService, pricing Pricing, publicURL string, logger *zap.Logger) *AffiliateService {
	return &AffiliateService{
		store:     s,
		doctors:   doctors,
		pricing:   pricing,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AffiliateService) load(ctx context.Context) ([]models.Affiliate, error) {
	return readList[models.Affiliate](ctx, s.store, store.AffiliatesKey, s.logger)
}

func (s *AffiliateService) Create(ctx context.Context, name, email, password string) (*models.Affiliate, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if err := utils.Required("name", name, "email", email, "password", password); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	affiliates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range affiliates {
		if strings.EqualFold(a.Email, email) {
			return nil, ErrEmailInUse
		}
	}

	a := models.Affiliate{
		ID:              "aff_" + newID(),
		Name:            name,
		Email:           email,
		PasswordHash:    hash,
		TotalEarnings:   decimal.Zero,
		MonthlyEarnings: decimal.Zero,
		JoinDate:        s.now().UTC(),
		Status:          models.AffiliateActive,
	}
	affiliates = append(affiliates, a)
	if err := store.WriteJSON(ctx, s.store, store.AffiliatesKey, affiliates); err != nil {
		return nil, err
	}
	s.logger.Info("affiliate created", zap.String("affiliate_id", a.ID))
	return &a, nil
}

func (s *AffiliateService) List(ctx context.Context) ([]models.Affiliate, error) {
	return s.load(ctx)
}

func (s *AffiliateService) Get(ctx context.Context, id string) (*models.Affiliate, error) {
	affiliates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range affiliates {
		if affiliates[i].ID == id {
			return &affiliates[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *AffiliateService) SetStatus(ctx context.Context, id string, status models.AffiliateStatus) (*models.Affiliate, error) {
	if status != models.AffiliateActive && status != models.AffiliateInactive {
		return nil, &utils.ValidationError{Field: "status", Message: "status must be active or inactive"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	affiliates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range affiliates {
		if affiliates[i].ID != id {
			continue
		}
		affiliates[i].Status = status
		if err := store.WriteJSON(ctx, s.store, store.AffiliatesKey, affiliates); err != nil {
			return nil, err
		}
		return &affiliates[i], nil
	}
	return nil, ErrNotFound
}

// Recalculate refreshes every affiliate's counters and earnings from the directory.
func (s *AffiliateService) Recalculate(ctx context.Context, now time.Time) error {
	doctors, err := s.doctors.All(ctx)
	if err != nil {
		return err
	}
	byAffiliate := make(map[string][]models.Doctor)
	for _, d := range doctors {
		byAffiliate[d.SubmittedBy] = append(byAffiliate[d.SubmittedBy], d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	affiliates, err := s.load(ctx)
	if err != nil {
		return err
	}
	if len(affiliates) == 0 {
		return nil
	}
	for i := range affiliates {
		e := ComputeEarnings(byAffiliate[affiliates[i].ID], s.pricing, now)
		affiliates[i].MonthlyEarnings = e.Monthly
		affiliates[i].TotalEarnings = e.Total
		affiliates[i].ReferredDoctors = e.ReferredDoctors
		affiliates[i].ActiveReferrals = e.ActiveReferrals
	}
	if err := store.WriteJSON(ctx, s.store, store.AffiliatesKey, affiliates); err != nil {
		return err
	}
	s.logger.Info("affiliate earnings recalculated", zap.Int("affiliates", len(affiliates)))
	return nil
}

func (s *AffiliateService) ReferralLink(affiliateID string) string {
	return s.publicURL + "/register?ref=" + affiliateID
}

func (s *AffiliateService) Dashboard(ctx context.Context, affiliateID string, now time.Time) (*AffiliateDashboard, error) {
	a, err := s.Get(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	referred, err := s.doctors.ReferredBy(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	return &AffiliateDashboard{
		Affiliate:    a.View(),
		Doctors:      referred,
		Earnings:     ComputeEarnings(referred, s.pricing, now),
		ReferralLink: s.ReferralLink(affiliateID),
	}, nil
}

func (s *AffiliateService) Summary(ctx context.Context) (*AffiliateSummary, error) {
	affiliates, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sum := &AffiliateSummary{Total: len(affiliates), MonthlyEarnings: decimal.Zero, TotalEarnings: decimal.Zero}
	for _, a := range affiliates {
		if a.Status == models.AffiliateActive {
			sum.Active++
		}
		sum.MonthlyEarnings = sum.MonthlyEarnings.Add(a.MonthlyEarnings)
		sum.TotalEarnings = sum.TotalEarnings.Add(a.TotalEarnings)
	}
	return sum, nil
}
