package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

const (
	NetworkFacebook = "facebook"
	NetworkWhatsApp = "whatsapp"
	NetworkCopy     = "copy"
)

type PatientDashboard struct {
	User       *models.User      `json:"user"`
	Activities []models.Activity `json:"activities"`
	Reviews    []models.Review   `json:"reviews"`
	Messages   []models.Message  `json:"messages"`
	Shares     []models.Share    `json:"shares"`
}

// PatientService backs the guest/patient dashboard and profile sharing.
type PatientService struct {
	store      store.Store
	doctors    *DoctorService
	activities *ActivityService
	reviews    *ReviewService
	messages   *MessageService
	publicURL  string
	logger     *zap.Logger
	now        Clock

	mu sync.Mutex
}

func NewPatientService(s store.Store, doctors *DoctorService, activities *ActivityService, reviews *ReviewService, messages *MessageService, publicURL string, logger *zap.Logger) *PatientService {
	return &PatientService{
		store:      s,
		doctors:    doctors,
		activities: activities,
		reviews:    reviews,
		messages:   messages,
		publicURL:  strings.TrimRight(publicURL, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PatientService) ProfileLink(doctorID int64) string {
	return s.publicURL + "/doctors/" + strconv.FormatInt(doctorID, 10)
}

// ShareURL builds the link handed to the chosen network.
func ShareURL(network string, d *models.Doctor, link string) (string, error) {
	switch network {
	case NetworkFacebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(link), nil
	case NetworkWhatsApp:
		text := fmt.Sprintf("%s - %s - %s %s", d.Name, d.Specialty, d.Location, link)
		return "https://wa.me/?text=" + url.QueryEscape(text), nil
	case NetworkCopy:
		return link, nil
	}
	return "", &utils.ValidationError{Field: "network", Message: "network must be facebook, whatsapp or copy"}
}

func (s *PatientService) Share(ctx context.Context, user *models.User, doctorID int64, network string) (string, error) {
	user = actor(user)
	network = strings.ToLower(strings.TrimSpace(network))
	d, err := s.doctors.GetPublic(ctx, doctorID)
	if err != nil {
		return "", err
	}
	shareURL, err := ShareURL(network, d, s.ProfileLink(d.ID))
	if err != nil {
		return "", err
	}

	share := models.Share{
		DoctorID:  d.ID,
		Name:      d.Name,
		Specialty: d.Specialty,
		Location:  d.Location,
		Network:   network,
		SharedAt:  s.now().UTC(),
	}
	s.mu.Lock()
	shares, err := readList[models.Share](ctx, s.store, store.SharesKey(user.ID), s.logger)
	if err == nil {
		err = store.WriteJSON(ctx, s.store, store.SharesKey(user.ID), append(shares, share))
	}
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	if err := s.activities.Record(ctx, user.ID, models.Activity{Type: models.ActivityShare, DoctorID: d.ID, DoctorName: d.Name}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("user_id", user.ID), zap.Error(err))
	}
	return shareURL, nil
}

func (s *PatientService) Dashboard(ctx context.Context, user *models.User) (*PatientDashboard, error) {
	user = actor(user)
	activities, err := s.activities.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.Sent(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	shares, err := readList[models.Share](ctx, s.store, store.SharesKey(user.ID), s.logger)
	if err != nil {
		return nil, err
	}
	return &PatientDashboard{User: user, Activities: activities, Reviews: reviews, Messages: messages, Shares: shares}, nil
}
