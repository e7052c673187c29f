package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

// TrackingService records directory interactions. The event log is the history; the
// clicks counters on each doctor are a display cache rebuilt by Reconcile.
type TrackingService struct {
	doctors *DoctorService
	events  EventLog
	logger  *zap.Logger
	now     Clock
}

func NewTrackingService(doctors *DoctorService, events EventLog, logger *zap.Logger) *TrackingService {
	return &TrackingService{doctors: doctors, events: events, logger: logger, now: time.Now}
}

func (s *TrackingService) Track(ctx context.Context, doctorID int64, t models.EventType) (*models.Clicks, error) {
	if !t.Valid() {
		return nil, &utils.ValidationError{Field: "type", Message: "type must be phone, email, website or profile"}
	}
	d, err := s.doctors.Update(ctx, doctorID, func(d *models.Doctor) error {
		if !d.Approved {
			return ErrNotFound
		}
		addClick(&d.Clicks, t, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := models.AnalyticsEvent{DoctorID: doctorID, Type: t, Timestamp: s.now().UTC()}
	if err := s.events.Append(ctx, ev); err != nil {
		s.logger.Warn("failed to append analytics event", zap.Int64("doctor_id", doctorID), zap.String("type", string(t)), zap.Error(err))
	}
	return &d.Clicks, nil
}

// Reconcile overwrites every doctor's counters with the totals of the event log.
func (s *TrackingService) Reconcile(ctx context.Context) (int, error) {
	counts, err := s.events.Counts(ctx)
	if err != nil {
		return 0, err
	}
	changed, err := s.doctors.UpdateAll(ctx, func(d *models.Doctor) bool {
		c := counts[d.ID]
		if c == d.Clicks {
			return false
		}
		d.Clicks = c
		return true
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.logger.Info("click counters reconciled", zap.Int("doctors", changed))
	}
	return changed, nil
}
