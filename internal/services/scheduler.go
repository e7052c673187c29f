package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the periodic maintenance jobs: affiliate earnings, subscription expiry
// and click counter reconciliation, in that order.
type Scheduler struct {
	cron          *cron.Cron
	affiliates    *AffiliateService
	subscriptions *SubscriptionService
	tracking      *TrackingService
	logger        *zap.Logger
	now           Clock
}

func NewScheduler(affiliates *AffiliateService, subscriptions *SubscriptionService, tracking *TrackingService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		affiliates:    affiliates,
		subscriptions: subscriptions,
		tracking:      tracking,
		logger:        logger,
		now:           time.Now,
	}
}

// Start registers the maintenance run on spec (standard cron syntax or @every/@hourly).
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", spec))
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce executes every job; a failing job is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.now()
	if err := s.affiliates.Recalculate(ctx, now); err != nil {
		s.logger.Error("affiliate recalculation failed", zap.Error(err))
	}
	if _, err := s.subscriptions.ExpireDue(ctx, now); err != nil {
		s.logger.Error("subscription expiry failed", zap.Error(err))
	}
	if _, err := s.tracking.Reconcile(ctx); err != nil {
		s.logger.Error("click reconciliation failed", zap.Error(err))
	}
}
