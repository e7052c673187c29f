package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"go.uber.org/zap"
)

// MessageService keeps each message in the doctor's inbox and in the sender's outbox.
// Bodies are sealed with cipher when one is configured.
type MessageService struct {
	store      store.Store
	doctors    *DoctorService
	activities *ActivityService
	notifier   Notifier
	cipher     *utils.Cipher
	logger     *zap.Logger
	now        Clock

	mu sync.Mutex
}

func NewMessageService(s store.Store, doctors *DoctorService, activities *ActivityService, notifier Notifier, cipher *utils.Cipher, logger *zap.Logger) *MessageService {
	return &MessageService{store: s, doctors: doctors, activities: activities, notifier: notifier, cipher: cipher, logger: logger, now: time.Now}
}

func inboxKey(doctorID int64) string {
	return store.MessagesKey(strconv.FormatInt(doctorID, 10))
}

func (s *MessageService) append(ctx context.Context, key string, m models.Message) error {
	list, err := readList[models.Message](ctx, s.store, key, s.logger)
	if err != nil {
		return err
	}
	return store.WriteJSON(ctx, s.store, key, append(list, m))
}

func (s *MessageService) Send(ctx context.Context, user *models.User, doctorID int64, content string) (*models.Message, error) {
	user = actor(user)
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &utils.ValidationError{Field: "content", Message: "message content is required"}
	}
	doctor, err := s.doctors.GetPublic(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	sealed, err := s.cipher.Seal(content)
	if err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:          newID(),
		DoctorID:    doctorID,
		SenderID:    user.ID,
		SenderName:  user.Name,
		RecipientID: strconv.FormatInt(doctorID, 10),
		Content:     sealed,
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	err = s.append(ctx, inboxKey(doctorID), msg)
	if err == nil {
		err = s.append(ctx, store.MessagesKey(user.ID), msg)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.activities != nil {
		if err := s.activities.Record(ctx, user.ID, models.Activity{Type: models.ActivityMessage, DoctorID: doctor.ID, DoctorName: doctor.Name}); err != nil {
			s.logger.Warn("failed to record activity", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		note := models.Notification{Type: models.NotifyMessage, DoctorID: doctorID, From: user.Name, Preview: preview(content), CreatedAt: msg.CreatedAt}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Warn("failed to notify doctor", zap.Int64("doctor_id", doctorID), zap.Error(err))
		}
	}

	msg.Content = content
	return &msg, nil
}

func preview(content string) string {
	const maxPreview = 80
	r := []rune(content)
	if len(r) <= maxPreview {
		return content
	}
	return string(r[:maxPreview]) + "…"
}

// list opens every body and returns newest first.
func (s *MessageService) list(ctx context.Context, key string) ([]models.Message, error) {
	msgs, err := readList[models.Message](ctx, s.store, key, s.logger)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		plain, err := s.cipher.Open(msgs[i].Content)
		if err != nil {
			s.logger.Warn("failed to decrypt message", zap.String("message_id", msgs[i].ID), zap.Error(err))
			plain = ""
		}
		msgs[i].Content = plain
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return msgs, nil
}

func (s *MessageService) Inbox(ctx context.Context, doctorID int64) ([]models.Message, error) {
	return s.list(ctx, inboxKey(doctorID))
}

func (s *MessageService) Sent(ctx context.Context, userID string) ([]models.Message, error) {
	return s.list(ctx, store.MessagesKey(userID))
}

func (s *MessageService) UnreadCount(ctx context.Context, doctorID int64) (int, error) {
	msgs, err := readList[models.Message](ctx, s.store, inboxKey(doctorID), s.logger)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range msgs {
		if !m.IsRead {
			n++
		}
	}
	return n, nil
}

// MarkRead flips IsRead on the inbox copy and on the sender's outbox copy.
func (s *MessageService) MarkRead(ctx context.Context, doctorID int64, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox, err := readList[models.Message](ctx, s.store, inboxKey(doctorID), s.logger)
	if err != nil {
		return err
	}
	sender := ""
	for i := range inbox {
		if inbox[i].ID == messageID {
			inbox[i].IsRead = true
			sender = inbox[i].SenderID
			break
		}
	}
	if sender == "" {
		return ErrNotFound
	}
	if err := store.WriteJSON(ctx, s.store, inboxKey(doctorID), inbox); err != nil {
		return err
	}

	outbox, err := readList[models.Message](ctx, s.store, store.MessagesKey(sender), s.logger)
	if err != nil {
		return err
	}
	for i := range outbox {
		if outbox[i].ID == messageID {
			outbox[i].IsRead = true
			return store.WriteJSON(ctx, s.store, store.MessagesKey(sender), outbox)
		}
	}
	return nil
}
