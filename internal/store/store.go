package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist (or has expired).
var ErrNotFound = errors.New("store: key not found")

// ErrCorrupt wraps JSON decode failures of stored values.
var ErrCorrupt = errors.New("store: corrupt value")

// Store is a flat key-value space holding JSON-encoded collections.
// A ttl of zero means the key never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Fixed collection keys of the persisted state layout.
const (
	DoctorsKey           = "doctors"
	AffiliatesKey        = "affiliates"
	DoctorCredentialsKey = "doctorCredentials"
	AnalyticsEventsKey   = "analyticsEvents"
	CookieConsentKey     = "cookieConsent"
	UserKey              = "user"
)

func ReviewsKey(doctorID int64) string { return fmt.Sprintf("reviews_%d", doctorID) }

// MessagesKey is keyed either by a doctor id (inbox) or a user id (outbox).
func MessagesKey(owner string) string { return "messages_" + owner }

func ActivitiesKey(userID string) string { return "activities_" + userID }

func SharesKey(userID string) string { return "shares_" + userID }

func ConsentKey(client string) string { return CookieConsentKey + "_" + client }

// SessionKey maps a session token to the serialized session user.
func SessionKey(token string) string { return UserKey + ":" + token }

// UserSessionKey maps an identity to its single active session token.
func UserSessionKey(userID string) string { return "user_session:" + userID }

// ReadJSON decodes the value at key into dest. found is false when the key is absent.
// A decode failure returns found=false and an error wrapping ErrCorrupt.
func ReadJSON(ctx context.Context, s Store, key string, dest interface{}) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// WriteJSON encodes v and stores it under key without expiry.
func WriteJSON(ctx context.Context, s Store, key string, v interface{}) error {
	return WriteJSONWithTTL(ctx, s, key, v, 0)
}

// WriteJSONWithTTL encodes v and stores it under key with the given ttl.
func WriteJSONWithTTL(ctx context.Context, s Store, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}

// ReadList loads a JSON array stored under key. Missing keys and corrupt values both
// yield an empty, non-nil slice; corruption is still reported through the error so
// callers can log it. Backend failures are returned with a nil slice.
func ReadList[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var items []T
	_, err := ReadJSON(ctx, s, key, &items)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return []T{}, err
		}
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
