package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := m.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("expected a to be present, got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if _, err := m.Get(ctx, "b"); err != nil {
		t.Fatalf("expected b to never expire, got %v", err)
	}
	keys, _ := m.Keys(ctx, "")
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("expected only b in keys, got %v", keys)
	}
}

func TestReadListFallbacks(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	items, err := ReadList[item](ctx, m, "missing")
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("expected empty list for missing key, got %v %v", items, err)
	}

	_ = m.Set(ctx, "broken", []byte("{not json"), 0)
	items, err = ReadList[item](ctx, m, "broken")
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty list for corrupt key, got %v", items)
	}

	if err := WriteJSON(ctx, m, "list", []item{{ID: 1, Name: "one"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	items, err = ReadList[item](ctx, m, "list")
	if err != nil || len(items) != 1 || items[0].Name != "one" {
		t.Fatalf("unexpected list %v %v", items, err)
	}
}

func TestKeyBuilders(t *testing.T) {
	cases := []struct {
		got      string
		expected string
	}{
		{ReviewsKey(42), "reviews_42"},
		{MessagesKey("42"), "messages_42"},
		{ActivitiesKey("guest"), "activities_guest"},
		{SharesKey("guest"), "shares_guest"},
		{ConsentKey("10.0.0.1"), "cookieConsent_10.0.0.1"},
		{SessionKey("tok"), "user:tok"},
		{UserSessionKey("admin"), "user_session:admin"},
	}
	for _, c := range cases {
		if c.got != c.expected {
			t.Fatalf("expected %s, got %s", c.expected, c.got)
		}
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedis(client)
	ctx := context.Background()

	if _, err := s.Get(ctx, "doctors"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "reviews_1", []byte("[]"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "reviews_2", []byte("[]"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "doctors", []byte("[]"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists(RedisKeyPrefix + "doctors") {
		t.Fatalf("expected key to be namespaced")
	}

	keys, err := s.Keys(ctx, "reviews_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "reviews_1" || keys[1] != "reviews_2" {
		t.Fatalf("unexpected keys %v", keys)
	}

	mr.FastForward(2 * time.Hour)
	if _, err := s.Get(ctx, "reviews_2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}

	if err := s.Delete(ctx, "doctors"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "doctors"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key to be gone, got %v", err)
	}
}

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("doctors").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[{"id":1}]`))
	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("affiliates").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("doctors", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT key FROM kv_store").
		WithArgs(`reviews\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("reviews_1").AddRow("reviews_7"))
	mock.ExpectExec("DELETE FROM kv_store").
		WithArgs("doctors").
		WillReturnResult(sqlmock.NewResult(0, 1))

	val, err := s.Get(ctx, "doctors")
	if err != nil || string(val) != `[{"id":1}]` {
		t.Fatalf("unexpected get %q %v", val, err)
	}
	if _, err := s.Get(ctx, "affiliates"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "doctors", []byte("[]"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	keys, err := s.Keys(ctx, "reviews_")
	if err != nil || len(keys) != 2 {
		t.Fatalf("unexpected keys %v %v", keys, err)
	}
	if err := s.Delete(ctx, "doctors"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
