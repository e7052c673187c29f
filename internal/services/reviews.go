package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AverageRating is round(mean, 1), or 0 without reviews.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	// exact division, half away from zero: 87/20 caches 4.4
	return decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(len(reviews))), 1).InexactFloat64()
}

func validateReview(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return &utils.ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if strings.TrimSpace(comment) == "" {
		return &utils.ValidationError{Field: "comment", Message: "comment is required"}
	}
	return nil
}

type ReviewService struct {
	store      store.Store
	doctors    *DoctorService
	activities *ActivityService
	notifier   Notifier
	logger     *zap.Logger
	now        Clock

	mu sync.Mutex
}

func NewReviewService(s store.Store, doctors *DoctorService, activities *ActivityService, notifier Notifier, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: s, doctors: doctors, activities: activities, notifier: notifier, logger: logger, now: time.Now}
}

func (s *ReviewService) List(ctx context.Context, doctorID int64) ([]models.Review, error) {
	return readList[models.Review](ctx, s.store, store.ReviewsKey(doctorID), s.logger)
}

// mutate runs fn over a doctor's reviews, persists them and refreshes the cached rating.
func (s *ReviewService) mutate(ctx context.Context, doctorID int64, fn func([]models.Review) ([]models.Review, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews, err := s.List(ctx, doctorID)
	if err != nil {
		return err
	}
	reviews, err = fn(reviews)
	if err != nil {
		return err
	}
	if err := store.WriteJSON(ctx, s.store, store.ReviewsKey(doctorID), reviews); err != nil {
		return err
	}
	// reviews of a rejected doctor outlive the listing
	if err := s.doctors.SetRating(ctx, doctorID, AverageRating(reviews)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func (s *ReviewService) Submit(ctx context.Context, user *models.User, doctorID int64, rating int, comment string) (*models.Review, error) {
	user = actor(user)
	if user.Role == models.RoleDoctor {
		return nil, ErrForbidden
	}
	if err := validateReview(rating, comment); err != nil {
		return nil, err
	}
	doctor, err := s.doctors.GetPublic(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	review := models.Review{
		ID:        newID(),
		DoctorID:  doctorID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now().UTC(),
		IsGuest:   user.Role == models.RoleGuest,
	}
	err = s.mutate(ctx, doctorID, func(reviews []models.Review) ([]models.Review, error) {
		for _, r := range reviews {
			if r.UserID == user.ID {
				return nil, ErrDuplicateReview
			}
		}
		return append(reviews, review), nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, user.ID, models.ActivityReview, doctor)
	s.notify(ctx, models.Notification{Type: models.NotifyReview, DoctorID: doctorID, From: user.Name, Preview: review.Comment, CreatedAt: review.CreatedAt})
	return &review, nil
}

func (s *ReviewService) Edit(ctx context.Context, user *models.User, doctorID int64, reviewID string, rating int, comment string) (*models.Review, error) {
	user = actor(user)
	if err := validateReview(rating, comment); err != nil {
		return nil, err
	}
	var edited models.Review
	err := s.mutate(ctx, doctorID, func(reviews []models.Review) ([]models.Review, error) {
		for i := range reviews {
			if reviews[i].ID != reviewID {
				continue
			}
			if reviews[i].UserID != user.ID {
				return nil, ErrForbidden
			}
			now := s.now().UTC()
			reviews[i].Rating = rating
			reviews[i].Comment = strings.TrimSpace(comment)
			reviews[i].UpdatedAt = &now
			edited = reviews[i]
			return reviews, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &edited, nil
}

// Delete is allowed for the author and for admins.
func (s *ReviewService) Delete(ctx context.Context, user *models.User, doctorID int64, reviewID string) error {
	user = actor(user)
	return s.mutate(ctx, doctorID, func(reviews []models.Review) ([]models.Review, error) {
		for i := range reviews {
			if reviews[i].ID != reviewID {
				continue
			}
			if reviews[i].UserID != user.ID && user.Role != models.RoleAdmin {
				return nil, ErrForbidden
			}
			return append(reviews[:i], reviews[i+1:]...), nil
		}
		return nil, ErrNotFound
	})
}

// Respond attaches the doctor's single reply to a review on their own listing.
func (s *ReviewService) Respond(ctx context.Context, user *models.User, doctorID int64, reviewID, text string) (*models.Review, error) {
	if user == nil || user.Role != models.RoleDoctor || user.DoctorID == nil || *user.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &utils.ValidationError{Field: "text", Message: "response text is required"}
	}
	var answered models.Review
	err := s.mutate(ctx, doctorID, func(reviews []models.Review) ([]models.Review, error) {
		for i := range reviews {
			if reviews[i].ID != reviewID {
				continue
			}
			if reviews[i].Response != nil {
				return nil, ErrAlreadyResponded
			}
			reviews[i].Response = &models.ReviewResponse{Text: text, CreatedAt: s.now().UTC()}
			answered = reviews[i]
			return reviews, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &answered, nil
}

// ByUser collects a user's reviews across all doctors, newest first.
func (s *ReviewService) ByUser(ctx context.Context, userID string) ([]models.Review, error) {
	keys, err := s.store.Keys(ctx, "reviews_")
	if err != nil {
		return nil, err
	}
	out := make([]models.Review, 0)
	for _, key := range keys {
		reviews, err := readList[models.Review](ctx, s.store, key, s.logger)
		if err != nil {
			return nil, err
		}
		for _, r := range reviews {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ReviewService) record(ctx context.Context, userID string, t models.ActivityType, d *models.Doctor) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Record(ctx, userID, models.Activity{Type: t, DoctorID: d.ID, DoctorName: d.Name}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *ReviewService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to notify doctor", zap.Int64("doctor_id", n.DoctorID), zap.Error(err))
	}
}
