package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/shopspring/decimal"
)

func subscribed(plan models.Plan, start time.Time, active bool) models.Doctor {
	return models.Doctor{Subscription: &models.Subscription{Active: active, Plan: plan, StartDate: start}}
}

func TestComputeEarnings(t *testing.T) {
	now := testNow
	tests := []struct {
		name     string
		referred []models.Doctor
		monthly  string
		total    string
		active   int
	}{
		{"none", nil, "0", "0", 0},
		{"fresh monthly", []models.Doctor{subscribed(models.PlanMonthly, now, true)}, "9.8", "0", 1},
		{"monthly after three months", []models.Doctor{subscribed(models.PlanMonthly, now.Add(-91*24*time.Hour), true)}, "9.8", "29.4", 1},
		{"yearly", []models.Doctor{subscribed(models.PlanYearly, now, true)}, "8.32", "99.8", 1},
		{"inactive is ignored", []models.Doctor{subscribed(models.PlanYearly, now, false), {}}, "0", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ComputeEarnings(tt.referred, DefaultPricing(), now)
			if !e.Monthly.Equal(decimal.RequireFromString(tt.monthly)) {
				t.Fatalf("expected monthly %s, got %s", tt.monthly, e.Monthly)
			}
			if !e.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Fatalf("expected total %s, got %s", tt.total, e.Total)
			}
			if e.ActiveReferrals != tt.active || e.ReferredDoctors != len(tt.referred) {
				t.Fatalf("unexpected counters %+v", e)
			}
		})
	}
}

func TestCreateAffiliate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a, err := e.affiliates.Create(ctx, "Rami", "rami@example.com", "secret1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(a.ID) < 5 || a.ID[:4] != "aff_" || a.Status != models.AffiliateActive {
		t.Fatalf("unexpected affiliate %+v", a)
	}
	if ok, _ := utils.VerifyPassword("secret1", a.PasswordHash); !ok {
		t.Fatalf("password must be stored hashed")
	}
	if _, err := e.affiliates.Create(ctx, "Other", "RAMI@example.com", "secret2"); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	var verr *utils.ValidationError
	if _, err := e.affiliates.Create(ctx, "Short", "short@example.com", "123"); !errors.As(err, &verr) {
		t.Fatalf("expected password validation error, got %v", err)
	}
	if _, err := e.affiliates.SetStatus(ctx, a.ID, "paused"); !errors.As(err, &verr) {
		t.Fatalf("expected status validation error, got %v", err)
	}
	updated, err := e.affiliates.SetStatus(ctx, a.ID, models.AffiliateInactive)
	if err != nil || updated.Status != models.AffiliateInactive {
		t.Fatalf("unexpected status update %+v %v", updated, err)
	}
	if _, err := e.affiliates.SetStatus(ctx, "aff_none", models.AffiliateActive); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAffiliateDashboard(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a, _ := e.affiliates.Create(ctx, "Rami", "rami@example.com", "secret1")
	d, _ := e.doctors.Submit(ctx, validInput("Dr. Ref"), a.ID)
	if _, err := e.subscriptions.Activate(ctx, d.ID, models.PlanYearly, testNow); err != nil {
		t.Fatalf("activate: %v", err)
	}
	e.doctors.Submit(ctx, validInput("Dr. Free"), a.ID)

	dash, err := e.affiliates.Dashboard(ctx, a.ID, testNow)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Doctors) != 2 || dash.Earnings.ActiveReferrals != 1 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if !dash.Earnings.Total.Equal(decimal.RequireFromString("99.8")) {
		t.Fatalf("expected 99.8 total, got %s", dash.Earnings.Total)
	}
	if dash.ReferralLink != "https://lebdoc.test/register?ref="+a.ID {
		t.Fatalf("unexpected referral link %s", dash.ReferralLink)
	}

	if err := e.affiliates.Recalculate(ctx, testNow); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	stored, _ := e.affiliates.Get(ctx, a.ID)
	if stored.ReferredDoctors != 2 || !stored.MonthlyEarnings.Equal(decimal.RequireFromString("8.32")) {
		t.Fatalf("unexpected stored earnings %+v", stored)
	}
	sum, _ := e.affiliates.Summary(ctx)
	if sum.Total != 1 || sum.Active != 1 || !sum.TotalEarnings.Equal(decimal.RequireFromString("99.8")) {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	var verr *utils.ValidationError
	if _, err := e.subscriptions.Checkout(ctx, 4, "weekly"); !errors.As(err, &verr) {
		t.Fatalf("expected plan validation error, got %v", err)
	}
	if _, err := e.subscriptions.Checkout(ctx, 999, models.PlanMonthly); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	session, err := e.subscriptions.Checkout(ctx, 4, models.PlanMonthly)
	if err != nil || session != "demo_session_id" || len(e.gateway.Checkouts) != 1 || e.gateway.Checkouts[0] != "4:price_monthly" {
		t.Fatalf("unexpected checkout %s %v %v", session, err, e.gateway.Checkouts)
	}

	d, err := e.subscriptions.Activate(ctx, 4, models.PlanMonthly, testNow)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !d.Subscription.Active || !d.Subscription.EndDate.Equal(testNow.AddDate(0, 1, 0)) || !d.Subscription.MemberSince.Equal(testNow) {
		t.Fatalf("unexpected subscription %+v", d.Subscription)
	}

	later := testNow.AddDate(0, 2, 0)
	d, _ = e.subscriptions.Activate(ctx, 4, models.PlanYearly, later)
	if !d.Subscription.MemberSince.Equal(testNow) || !d.Subscription.EndDate.Equal(later.AddDate(1, 0, 0)) {
		t.Fatalf("renewal must keep member since, got %+v", d.Subscription)
	}

	d, err = e.subscriptions.Cancel(ctx, 4)
	if err != nil || d.Subscription.Active || len(e.gateway.Cancelled) != 1 {
		t.Fatalf("unexpected cancel %+v %v", d, err)
	}
}

func TestExpireDue(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// seeded subscriptions started on 2024-01-01
	n, err := e.subscriptions.ExpireDue(ctx, testNow)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the two monthly seed plans to expire, got %d", n)
	}
	yearly, _ := e.doctors.Get(ctx, 3)
	if !yearly.HasActiveSubscription() {
		t.Fatalf("yearly plan should still be active")
	}
	if n, _ := e.subscriptions.ExpireDue(ctx, testNow); n != 0 {
		t.Fatalf("second run should be a no-op, got %d", n)
	}
}

func TestSetActive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	d, err := e.subscriptions.SetActive(ctx, 5, true, "", testNow)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if d.Subscription == nil || !d.Subscription.Active || d.Subscription.Plan != models.PlanMonthly {
		t.Fatalf("expected a fresh monthly plan, got %+v", d.Subscription)
	}
	d, _ = e.subscriptions.SetActive(ctx, 5, false, "", testNow)
	if d.Subscription.Active {
		t.Fatalf("expected inactive")
	}
	d, _ = e.subscriptions.SetActive(ctx, 4, false, "", testNow)
	if d.Subscription != nil {
		t.Fatalf("deactivating without a plan must not create one")
	}
}
