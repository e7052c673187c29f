package services

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"go.uber.org/zap"
)

// MaxActivities caps each user's activity feed.
const MaxActivities = 100

type ActivityService struct {
	store  store.Store
	logger *zap.Logger
	now    Clock

	mu sync.Mutex
}

func NewActivityService(s store.Store, logger *zap.Logger) *ActivityService {
	return &ActivityService{store: s, logger: logger, now: time.Now}
}

// Record prepends a to the user's feed.
func (s *ActivityService) Record(ctx context.Context, userID string, a models.Activity) error {
	if a.At.IsZero() {
		a.At = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	list = append([]models.Activity{a}, list...)
	if len(list) > MaxActivities {
		list = list[:MaxActivities]
	}
	return store.WriteJSON(ctx, s.store, store.ActivitiesKey(userID), list)
}

// List returns the feed newest first.
func (s *ActivityService) List(ctx context.Context, userID string) ([]models.Activity, error) {
	return readList[models.Activity](ctx, s.store, store.ActivitiesKey(userID), s.logger)
}
