package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/store"
)

type Consent struct {
	Accepted  bool      `json:"accepted"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConsentService remembers the cookie banner choice per client.
type ConsentService struct {
	store store.Store
	now   Clock
}

func NewConsentService(s store.Store) *ConsentService {
	return &ConsentService{store: s, now: time.Now}
}

// Get returns nil when the client has not answered yet.
func (s *ConsentService) Get(ctx context.Context, client string) (*Consent, error) {
	var c Consent
	found, err := store.ReadJSON(ctx, s.store, store.ConsentKey(client), &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

func (s *ConsentService) Set(ctx context.Context, client string, accepted bool) (*Consent, error) {
	c := &Consent{Accepted: accepted, UpdatedAt: s.now().UTC()}
	if err := store.WriteJSON(ctx, s.store, store.ConsentKey(client), c); err != nil {
		return nil, err
	}
	return c, nil
}
