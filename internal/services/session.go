package services

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/google/uuid"
)

// SessionDuration is 7 days
const SessionDuration = 7 * 24 * time.Hour

// SessionService keeps one active session per identity. Logging in again replaces the
// previous token so the 7-day timer restarts from the latest login.
type SessionService struct {
	store store.Store
}

func NewSessionService(s store.Store) *SessionService {
	return &SessionService{store: s}
}

func newToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create stores user under a fresh token and returns it.
func (s *SessionService) Create(ctx context.Context, user *models.User) (string, error) {
	if err := s.InvalidateUser(ctx, user.ID); err != nil {
		return "", err
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}
	if err := store.WriteJSONWithTTL(ctx, s.store, store.SessionKey(token), user, SessionDuration); err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, store.UserSessionKey(user.ID), []byte(token), SessionDuration); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the session user; ok is false for unknown or expired tokens.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	var user models.User
	found, err := store.ReadJSON(ctx, s.store, store.SessionKey(token), &user)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return &user, true, nil
}

// Invalidate removes one session (logout).
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	user, ok, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if ok {
		current, err := s.store.Get(ctx, store.UserSessionKey(user.ID))
		if err == nil && string(current) == token {
			_ = s.store.Delete(ctx, store.UserSessionKey(user.ID))
		}
	}
	return s.store.Delete(ctx, store.SessionKey(token))
}

// InvalidateUser drops the identity's active session, e.g. after a password change.
func (s *SessionService) InvalidateUser(ctx context.Context, userID string) error {
	token, err := s.store.Get(ctx, store.UserSessionKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.Delete(ctx, store.SessionKey(string(token))); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.UserSessionKey(userID))
}
