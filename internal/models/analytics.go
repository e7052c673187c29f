package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventPhone   EventType = "phone"
	EventEmail   EventType = "email"
	EventWebsite EventType = "website"
	EventProfile EventType = "profile"
)

func (t EventType) Valid() bool {
	switch t {
	case EventPhone, EventEmail, EventWebsite, EventProfile:
		return true
	}
	return false
}

// AnalyticsEvent is one tracked interaction. Mongo keeps them in analytics_events.
type AnalyticsEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	DoctorID  int64              `bson:"doctor_id" json:"doctorId"`
	Type      EventType          `bson:"type" json:"type"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
