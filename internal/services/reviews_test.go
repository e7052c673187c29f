package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
)

func repeat(rating, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = rating
	}
	return out
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		ratings []int
		want    float64
	}{
		{nil, 0},
		{[]int{5}, 5},
		{[]int{4, 5}, 4.5},
		{[]int{5, 4, 4}, 4.3},
		{[]int{1, 2, 2}, 1.7},
		// 87 / 20 = 4.35 exactly
		{append(repeat(4, 13), repeat(5, 7)...), 4.4},
	}
	for _, tt := range tests {
		reviews := make([]models.Review, len(tt.ratings))
		for i, r := range tt.ratings {
			reviews[i].Rating = r
		}
		if got := AverageRating(reviews); got != tt.want {
			t.Fatalf("ratings %v: expected %v, got %v", tt.ratings, tt.want, got)
		}
	}
}

func TestGuestReviewUpdatesRating(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	r, err := e.reviews.Submit(ctx, nil, 2, 5, "great")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !r.IsGuest || r.UserID != "guest" {
		t.Fatalf("expected guest review, got %+v", r)
	}
	d, _ := e.doctors.Get(ctx, 2)
	if d.Rating != 5.0 {
		t.Fatalf("expected rating 5.0, got %v", d.Rating)
	}
	if len(e.notifier.sent) != 1 || e.notifier.sent[0].Type != models.NotifyReview || e.notifier.sent[0].DoctorID != 2 {
		t.Fatalf("expected one review notification, got %+v", e.notifier.sent)
	}
	acts, _ := e.activities.List(ctx, "guest")
	if len(acts) != 1 || acts[0].Type != models.ActivityReview {
		t.Fatalf("expected review activity, got %+v", acts)
	}
}

func TestSubmitReviewRules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	patient := &models.User{ID: "guest", Name: "Patient", Role: models.RoleGuest}

	var verr *utils.ValidationError
	if _, err := e.reviews.Submit(ctx, patient, 1, 6, "too much"); !errors.As(err, &verr) || verr.Field != "rating" {
		t.Fatalf("expected rating validation error, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, patient, 1, 0, "too little"); !errors.As(err, &verr) {
		t.Fatalf("expected rating validation error, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, patient, 1, 3, "  "); !errors.As(err, &verr) || verr.Field != "comment" {
		t.Fatalf("expected comment validation error, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, patient, 999, 3, "ok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, doctorUser(2), 1, 5, "colleague"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("doctors must not review, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, patient, 1, 4, "good"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := e.reviews.Submit(ctx, patient, 1, 5, "again"); !errors.Is(err, ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}
	if _, err := e.reviews.Submit(ctx, &models.User{ID: "admin", Name: "Admin", Role: models.RoleAdmin}, 1, 5, "fine"); err != nil {
		t.Fatalf("second reviewer: %v", err)
	}
	d, _ := e.doctors.Get(ctx, 1)
	if d.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", d.Rating)
	}
}

func TestEditAndDeleteReview(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	author := &models.User{ID: "guest", Name: "Patient", Role: models.RoleGuest}
	other := &models.User{ID: "aff_1", Name: "Other", Role: models.RoleAffiliate}
	admin := &models.User{ID: "admin", Role: models.RoleAdmin}

	r, _ := e.reviews.Submit(ctx, author, 3, 2, "meh")
	if _, err := e.reviews.Edit(ctx, other, 3, r.ID, 5, "hijack"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	edited, err := e.reviews.Edit(ctx, author, 3, r.ID, 4, "better")
	if err != nil || edited.UpdatedAt == nil || edited.Rating != 4 {
		t.Fatalf("unexpected edit %+v %v", edited, err)
	}
	d, _ := e.doctors.Get(ctx, 3)
	if d.Rating != 4 {
		t.Fatalf("expected rating refresh to 4, got %v", d.Rating)
	}

	if err := e.reviews.Delete(ctx, other, 3, r.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := e.reviews.Delete(ctx, admin, 3, r.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	d, _ = e.doctors.Get(ctx, 3)
	if d.Rating != 0 {
		t.Fatalf("expected rating 0 without reviews, got %v", d.Rating)
	}
	if err := e.reviews.Delete(ctx, admin, 3, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRespondOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	r, _ := e.reviews.Submit(ctx, nil, 1, 5, "thanks doc")
	if _, err := e.reviews.Respond(ctx, doctorUser(2), 1, r.ID, "not mine"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another doctor, got %v", err)
	}
	if _, err := e.reviews.Respond(ctx, GuestUser(), 1, r.ID, "hi"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for guest, got %v", err)
	}
	answered, err := e.reviews.Respond(ctx, doctorUser(1), 1, r.ID, "  You are welcome ")
	if err != nil || answered.Response == nil || answered.Response.Text != "You are welcome" {
		t.Fatalf("unexpected response %+v %v", answered, err)
	}
	if _, err := e.reviews.Respond(ctx, doctorUser(1), 1, r.ID, "again"); !errors.Is(err, ErrAlreadyResponded) {
		t.Fatalf("expected ErrAlreadyResponded, got %v", err)
	}
}

func TestReviewsByUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.reviews.Submit(ctx, nil, 1, 5, "one")
	e.reviews.Submit(ctx, nil, 3, 4, "three")
	e.reviews.Submit(ctx, &models.User{ID: "admin", Role: models.RoleAdmin}, 3, 1, "other")

	mine, err := e.reviews.ByUser(ctx, "guest")
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected two guest reviews, got %v %v", mine, err)
	}
}
