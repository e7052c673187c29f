package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

func TestSendAndMarkRead(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	patient := &models.User{ID: "guest", Name: "Patient", Role: models.RoleGuest}

	var verr *utils.ValidationError
	if _, err := e.messages.Send(ctx, patient, 1, "   "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := e.messages.Send(ctx, patient, 999, "hi"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	msg, err := e.messages.Send(ctx, patient, 1, " Is Tuesday possible? ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Content != "Is Tuesday possible?" || msg.RecipientID != "1" || msg.IsRead {
		t.Fatalf("unexpected message %+v", msg)
	}

	inbox, _ := e.messages.Inbox(ctx, 1)
	sent, _ := e.messages.Sent(ctx, "guest")
	if len(inbox) != 1 || len(sent) != 1 || inbox[0].ID != sent[0].ID {
		t.Fatalf("expected the message in inbox and outbox, got %v %v", inbox, sent)
	}
	if n, _ := e.messages.UnreadCount(ctx, 1); n != 1 {
		t.Fatalf("expected 1 unread, got %d", n)
	}
	if len(e.notifier.sent) != 1 || e.notifier.sent[0].Type != models.NotifyMessage {
		t.Fatalf("expected message notification, got %+v", e.notifier.sent)
	}

	if err := e.messages.MarkRead(ctx, 1, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := e.messages.MarkRead(ctx, 1, msg.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n, _ := e.messages.UnreadCount(ctx, 1); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
	sent, _ = e.messages.Sent(ctx, "guest")
	if !sent[0].IsRead {
		t.Fatalf("outbox copy should be marked read")
	}
}

func TestMessagesAreSealedAtRest(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	key := make([]byte, 32)
	rand.Read(key)
	cipher, err := utils.NewCipher(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	e.messages = NewMessageService(e.store, e.doctors, e.activities, nil, cipher, zap.NewNop())

	if _, err := e.messages.Send(ctx, nil, 2, "private note"); err != nil {
		t.Fatalf("send: %v", err)
	}
	raw, _ := e.store.Get(ctx, store.MessagesKey("2"))
	if strings.Contains(string(raw), "private note") {
		t.Fatalf("message body stored in clear: %s", raw)
	}
	inbox, _ := e.messages.Inbox(ctx, 2)
	if len(inbox) != 1 || inbox[0].Content != "private note" {
		t.Fatalf("expected decrypted inbox, got %+v", inbox)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 100)
	p := preview(long)
	if len([]rune(p)) != 81 || !strings.HasSuffix(p, "…") {
		t.Fatalf("unexpected preview %q", p)
	}
	if preview("short") != "short" {
		t.Fatalf("short content must be kept")
	}
}

func TestActivityFeedIsCapped(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < MaxActivities+5; i++ {
		if err := e.activities.Record(ctx, "guest", models.Activity{Type: models.ActivityView, DoctorID: int64(i)}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	list, _ := e.activities.List(ctx, "guest")
	if len(list) != MaxActivities {
		t.Fatalf("expected %d activities, got %d", MaxActivities, len(list))
	}
	if list[0].DoctorID != int64(MaxActivities+4) {
		t.Fatalf("expected newest first, got %d", list[0].DoctorID)
	}
}

func TestShareURL(t *testing.T) {
	d := &models.Doctor{ID: 1, Name: "Dr. Sarah Khoury", Specialty: "Cardiology", Location: "Paris"}
	link := "https://lebdoc.test/doctors/1"
	tests := []struct {
		network string
		want    string
	}{
		{NetworkFacebook, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Flebdoc.test%2Fdoctors%2F1"},
		{NetworkWhatsApp, "https://wa.me/?text=Dr.+Sarah+Khoury+-+Cardiology+-+Paris+https%3A%2F%2Flebdoc.test%2Fdoctors%2F1"},
		{NetworkCopy, link},
	}
	for _, tt := range tests {
		got, err := ShareURL(tt.network, d, link)
		if err != nil || got != tt.want {
			t.Fatalf("%s: expected %s, got %s %v", tt.network, tt.want, got, err)
		}
	}
	if _, err := ShareURL("myspace", d, link); err == nil {
		t.Fatalf("expected unknown network to fail")
	}
}

func TestPatientDashboard(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	patient := &models.User{ID: "guest", Name: "Patient", Role: models.RoleGuest}

	if _, err := e.patients.Share(ctx, patient, 4, NetworkCopy); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending doctors cannot be shared, got %v", err)
	}
	link, err := e.patients.Share(ctx, patient, 1, "WhatsApp")
	if err != nil || !strings.HasPrefix(link, "https://wa.me/") {
		t.Fatalf("unexpected share %s %v", link, err)
	}
	e.reviews.Submit(ctx, patient, 1, 5, "great")
	e.messages.Send(ctx, patient, 3, "hello")

	dash, err := e.patients.Dashboard(ctx, patient)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.Shares) != 1 || len(dash.Reviews) != 1 || len(dash.Messages) != 1 || len(dash.Activities) != 3 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
	if dash.Activities[0].Type != models.ActivityMessage {
		t.Fatalf("expected newest activity first, got %+v", dash.Activities[0])
	}
}
