package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, note models.Notification) error {
	n.mu.Lock()
	n.sent = append(n.sent, note)
	n.mu.Unlock()
	return nil
}

type testEnv struct {
	store         *store.Memory
	doctors       *DoctorService
	activities    *ActivityService
	reviews       *ReviewService
	messages      *MessageService
	affiliates    *AffiliateService
	sessions      *SessionService
	auth          *AuthService
	events        *StoreEventLog
	tracking      *TrackingService
	reports       *ReportService
	subscriptions *SubscriptionService
	patients      *PatientService
	gateway       *MockGateway
	notifier      *recordingNotifier
}

// newTestEnv wires every service on an in-memory store seeded with the default directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	clock := func() time.Time { return testNow }

	e := &testEnv{store: store.NewMemory(), notifier: &recordingNotifier{}, gateway: NewMockGateway()}
	e.doctors = NewDoctorService(e.store, "/default.png", logger)
	e.doctors.now = clock
	e.activities = NewActivityService(e.store, logger)
	e.activities.now = clock
	e.reviews = NewReviewService(e.store, e.doctors, e.activities, e.notifier, logger)
	e.reviews.now = clock
	e.messages = NewMessageService(e.store, e.doctors, e.activities, e.notifier, nil, logger)
	e.messages.now = clock
	e.affiliates = NewAffiliateService(e.store, e.doctors, DefaultPricing(), "https://lebdoc.test/", logger)
	e.affiliates.now = clock
	e.sessions = NewSessionService(e.store)
	e.auth = NewAuthService(e.store, e.sessions, e.doctors,
		FixedAccount{Identifier: "admin", Password: "admin"},
		FixedAccount{Identifier: "guest", Password: "guest"}, logger)
	e.events = NewStoreEventLog(e.store, logger)
	e.tracking = NewTrackingService(e.doctors, e.events, logger)
	e.tracking.now = clock
	e.reports = NewReportService(e.doctors, e.reviews, e.messages, e.affiliates, e.events, logger)
	e.subscriptions = NewSubscriptionService(e.doctors, e.gateway, PriceIDs{Monthly: "price_monthly", Yearly: "price_yearly"}, logger)
	e.patients = NewPatientService(e.store, e.doctors, e.activities, e.reviews, e.messages, "https://lebdoc.test", logger)
	e.patients.now = clock

	if _, err := e.doctors.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return e
}

func doctorUser(id int64) *models.User {
	return &models.User{ID: DoctorUserID(id), Name: "Doctor", Role: models.RoleDoctor, DoctorID: &id}
}

func validInput(name string) DoctorInput {
	return DoctorInput{
		Name:      name,
		Specialty: "Neurology",
		Location:  "Lyon",
		Languages: []string{"French"},
		Phone:     "+33 4 00 00 00 00",
		Email:     "doc@example.com",
	}
}
