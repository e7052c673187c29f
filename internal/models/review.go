package models

import "time"

type ReviewResponse struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Review struct {
	ID        string          `json:"id"`
	DoctorID  int64           `json:"doctorId"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	Response  *ReviewResponse `json:"response,omitempty"`
	IsGuest   bool            `json:"isGuest,omitempty"`
}

// Message is stored twice: in the doctor's inbox and in the sender's outbox.
type Message struct {
	ID          string    `json:"id"`
	DoctorID    int64     `json:"doctorId"`
	SenderID    string    `json:"senderId"`
	SenderName  string    `json:"senderName"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	IsRead      bool      `json:"isRead"`
}
