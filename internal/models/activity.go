package models

import "time"

type ActivityType string

const (
	ActivityReview  ActivityType = "review"
	ActivityMessage ActivityType = "message"
	ActivityShare   ActivityType = "share"
	ActivityView    ActivityType = "view"
)

type Activity struct {
	Type       ActivityType `json:"type"`
	DoctorID   int64        `json:"doctorId"`
	DoctorName string       `json:"doctorName"`
	At         time.Time    `json:"at"`
}

type Share struct {
	DoctorID  int64     `json:"doctorId"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
	Network   string    `json:"network"`
	SharedAt  time.Time `json:"sharedAt"`
}

type NotificationType string

const (
	NotifyReview  NotificationType = "review"
	NotifyMessage NotificationType = "message"
)

// Notification is pushed to a doctor's websocket feed.
type Notification struct {
	Type      NotificationType `json:"type"`
	DoctorID  int64            `json:"doctorId"`
	From      string           `json:"from"`
	Preview   string           `json:"preview"`
	CreatedAt time.Time        `json:"createdAt"`
}
