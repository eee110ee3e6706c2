package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chatline/internal/cache"
	"chatline/internal/models"
)

var (
	ErrMissingCounterpart = errors.New("userId is required")
	ErrMissingReceiver    = errors.New("receiverId and content are required")
)

// timeLayout matches the original UI clock format (h:mm AM/PM).
const timeLayout = "3:04 PM"

// DisplayMessage is the shape the UI consumes: sender is relative to the
// caller, time is preformatted, status is a label rather than a flag.
type DisplayMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  string `json:"sender"` // "me" or "them"
	Time    string `json:"time"`
	Status  string `json:"status"` // "sent", "delivered" or "read"
}

type Service struct {
	db       *gorm.DB
	presence *cache.PresenceCache
}

func NewService(db *gorm.DB, presence *cache.PresenceCache) *Service {
	return &Service{db: db, presence: presence}
}

// Conversation returns every message between the caller and the counterpart
// ordered by creation time ascending, and marks counterpart→caller messages
// read. The side effect is unconditional: fetching is never a passive peek.
func (s *Service) Conversation(ctx context.Context, callerID, otherID string) ([]DisplayMessage, error) {
	if otherID == "" {
		return nil, ErrMissingCounterpart
	}

	var msgs []models.Message
	if err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			callerID, otherID, otherID, callerID).
		Order("created_at asc").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, callerID, false).
		Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark messages read: %w", err)
	}

	out := make([]DisplayMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toDisplay(m, callerID))
	}
	return out, nil
}

// Send persists a message from the caller with read=false and updates the
// caller's presence as a side effect. Validation happens before any write.
func (s *Service) Send(ctx context.Context, callerID, receiverID, content string) (DisplayMessage, error) {
	if receiverID == "" || content == "" {
		return DisplayMessage{}, ErrMissingReceiver
	}

	msg := models.Message{
		ID:         uuid.New().String(),
		SenderID:   callerID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return DisplayMessage{}, fmt.Errorf("failed to persist message: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", callerID).
		Updates(map[string]interface{}{"is_online": true, "last_seen": time.Now()}).Error; err != nil {
		return DisplayMessage{}, fmt.Errorf("failed to update presence: %w", err)
	}
	_ = s.presence.SetOnline(ctx, callerID)

	return DisplayMessage{
		ID:      msg.ID,
		Content: msg.Content,
		Sender:  "me",
		Time:    msg.CreatedAt.Format(timeLayout),
		Status:  "delivered",
	}, nil
}

func toDisplay(m models.Message, callerID string) DisplayMessage {
	d := DisplayMessage{
		ID:      m.ID,
		Content: m.Content,
		Time:    m.CreatedAt.Format(timeLayout),
	}
	if m.SenderID == callerID {
		d.Sender = "me"
	} else {
		d.Sender = "them"
	}
	if m.IsRead {
		d.Status = "read"
	} else {
		d.Status = "delivered"
	}
	return d
}
