package services

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Clock is swapped in tests.
type Clock func() time.Time

// GuestUser is the identity used when a review or message is sent without a session.
func GuestUser() *models.User {
	return &models.User{ID: "guest", Name: "Guest", Role: models.RoleGuest}
}

func actor(u *models.User) *models.User {
	if u == nil {
		return GuestUser()
	}
	return u
}

func newID() string {
	return ulid.Make().String()
}

// readList loads a collection; corrupt values are logged and read as empty.
func readList[T any](ctx context.Context, s store.Store, key string, logger *zap.Logger) ([]T, error) {
	items, err := store.ReadList[T](ctx, s, key)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			logger.Warn("stored collection is corrupt, treating as empty", zap.String("key", key), zap.Error(err))
			return items, nil
		}
		return nil, err
	}
	return items, nil
}
