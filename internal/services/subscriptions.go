package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

// PriceIDs maps plans to the payment provider's price identifiers.
type PriceIDs struct {
	Monthly string
	Yearly  string
}

type SubscriptionService struct {
	doctors *DoctorService
	gateway PaymentGateway
	prices  PriceIDs
	logger  *zap.Logger
}

func NewSubscriptionService(doctors *DoctorService, gateway PaymentGateway, prices PriceIDs, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{doctors: doctors, gateway: gateway, prices: prices, logger: logger}
}

func (s *SubscriptionService) priceID(plan models.Plan) (string, error) {
	switch plan {
	case models.PlanMonthly:
		return s.prices.Monthly, nil
	case models.PlanYearly:
		return s.prices.Yearly, nil
	}
	return "", &utils.ValidationError{Field: "plan", Message: "plan must be monthly or yearly"}
}

// Checkout opens a payment session for the plan and returns its id.
func (s *SubscriptionService) Checkout(ctx context.Context, doctorID int64, plan models.Plan) (string, error) {
	priceID, err := s.priceID(plan)
	if err != nil {
		return "", err
	}
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return "", err
	}
	sessionID, err := s.gateway.CreateCheckoutSession(ctx, doctorID, priceID)
	if err != nil {
		s.logger.Error("failed to create checkout session", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return "", ErrGateway
	}
	return sessionID, nil
}

func periodEnd(plan models.Plan, start time.Time) time.Time {
	if plan == models.PlanYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// Activate starts a plan period at now. MemberSince keeps the first activation date.
func (s *SubscriptionService) Activate(ctx context.Context, doctorID int64, plan models.Plan, now time.Time) (*models.Doctor, error) {
	priceID, err := s.priceID(plan)
	if err != nil {
		return nil, err
	}
	if _, err := s.gateway.CreateSubscription(ctx, doctorID, priceID); err != nil {
		s.logger.Error("failed to create subscription", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, ErrGateway
	}
	now = now.UTC()
	d, err := s.doctors.Update(ctx, doctorID, func(d *models.Doctor) error {
		memberSince := now
		if d.Subscription != nil && !d.Subscription.MemberSince.IsZero() {
			memberSince = d.Subscription.MemberSince
		}
		d.Subscription = &models.Subscription{
			Active:      true,
			Plan:        plan,
			StartDate:   now,
			EndDate:     periodEnd(plan, now),
			MemberSince: memberSince,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscription activated", zap.Int64("doctor_id", doctorID), zap.String("plan", string(plan)))
	return d, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, doctorID int64) (*models.Doctor, error) {
	d, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !d.HasActiveSubscription() {
		return d, nil
	}
	if err := s.gateway.CancelSubscription(ctx, "demo_subscription_id"); err != nil {
		s.logger.Error("failed to cancel subscription", zap.Int64("doctor_id", doctorID), zap.Error(err))
		return nil, ErrGateway
	}
	return s.doctors.Update(ctx, doctorID, func(d *models.Doctor) error {
		if d.Subscription != nil {
			d.Subscription.Active = false
		}
		return nil
	})
}

// SetActive is the admin toggle. Activating with a new plan, or after the period ended,
// starts a fresh period at now.
func (s *SubscriptionService) SetActive(ctx context.Context, doctorID int64, active bool, plan models.Plan, now time.Time) (*models.Doctor, error) {
	if plan == "" {
		plan = models.PlanMonthly
	}
	if _, err := s.priceID(plan); err != nil {
		return nil, err
	}
	now = now.UTC()
	return s.doctors.Update(ctx, doctorID, func(d *models.Doctor) error {
		if d.Subscription == nil {
			if !active {
				return nil
			}
			d.Subscription = &models.Subscription{Plan: plan, StartDate: now, EndDate: periodEnd(plan, now), MemberSince: now}
		}
		if active && (d.Subscription.Plan != plan || !d.Subscription.EndDate.After(now)) {
			d.Subscription.Plan = plan
			d.Subscription.StartDate = now
			d.Subscription.EndDate = periodEnd(plan, now)
		}
		d.Subscription.Active = active
		return nil
	})
}

// ExpireDue deactivates subscriptions whose end date has passed.
func (s *SubscriptionService) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	n, err := s.doctors.UpdateAll(ctx, func(d *models.Doctor) bool {
		if !d.HasActiveSubscription() || d.Subscription.EndDate.After(now) {
			return false
		}
		d.Subscription.Active = false
		return true
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("subscriptions expired", zap.Int("count", n))
	}
	return n, nil
}
