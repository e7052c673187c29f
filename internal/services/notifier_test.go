package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu     sync.Mutex
	got    []models.Notification
	failed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed {
		return errors.New("closed")
	}
	c.got = append(c.got, v.(models.Notification))
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a, b, other := &fakeConn{}, &fakeConn{failed: true}, &fakeConn{}
	unregister := hub.Register(1, a)
	hub.Register(1, b)
	hub.Register(2, other)

	if hub.Connections(1) != 2 {
		t.Fatalf("expected 2 connections, got %d", hub.Connections(1))
	}
	n := NewLocalNotifier(hub)
	if err := n.Notify(context.Background(), models.Notification{Type: models.NotifyReview, DoctorID: 1}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if a.count() != 1 || other.count() != 0 {
		t.Fatalf("expected delivery to doctor 1 only")
	}
	if a.got[0].CreatedAt.IsZero() {
		t.Fatalf("expected timestamp to be filled")
	}

	unregister()
	if hub.Connections(1) != 1 {
		t.Fatalf("expected 1 connection after unregister, got %d", hub.Connections(1))
	}
}

func TestRedisNotifierDelivers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	hub.Register(7, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := NewRedisNotifier(client, hub, zap.NewNop())
	n.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for conn.count() == 0 && time.Now().Before(deadline) {
		// the subscriber may not be registered yet; publish until it is
		if err := n.Notify(ctx, models.Notification{Type: models.NotifyMessage, DoctorID: 7, Preview: "hi"}); err != nil {
			t.Fatalf("notify: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if conn.count() == 0 {
		t.Fatalf("expected notification through redis")
	}
	conn.mu.Lock()
	got := conn.got[0]
	conn.mu.Unlock()
	if got.Preview != "hi" || got.DoctorID != 7 {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestSchedulerRunOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a, _ := e.affiliates.Create(ctx, "Rami", "rami@example.com", "secret1")
	d, _ := e.doctors.Submit(ctx, validInput("Dr. Ref"), a.ID)
	e.subscriptions.Activate(ctx, d.ID, models.PlanYearly, testNow)
	e.tracking.Track(ctx, 1, models.EventPhone)
	e.doctors.Update(ctx, 1, func(d *models.Doctor) error {
		d.Clicks = models.Clicks{}
		return nil
	})

	s := NewScheduler(e.affiliates, e.subscriptions, e.tracking, zap.NewNop())
	s.now = func() time.Time { return testNow }
	s.RunOnce(ctx)

	stored, _ := e.affiliates.Get(ctx, a.ID)
	if stored.ActiveReferrals != 1 {
		t.Fatalf("expected earnings recalculated, got %+v", stored)
	}
	sarah, _ := e.doctors.Get(ctx, 1)
	if sarah.HasActiveSubscription() || sarah.Clicks.Phone != 1 {
		t.Fatalf("expected expiry and reconciliation, got %+v", sarah)
	}
	if err := s.Start("not a spec"); err == nil {
		t.Fatalf("expected invalid cron spec to fail")
	}
}
