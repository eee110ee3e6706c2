package user

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"chatline/internal/cache"
	"chatline/internal/models"
)

// Contact is a user projected with conversation aggregates for the directory
// listing. LastMessage/LastMessageTime are nil when no history exists.
type Contact struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	AvatarURL       string     `json:"image"`
	IsOnline        bool       `json:"isOnline"`
	LastSeen        time.Time  `json:"lastSeen"`
	LastMessage     *string    `json:"lastMessage"`
	LastMessageTime *time.Time `json:"lastMessageTime"`
	UnreadCount     int        `json:"unreadCount"`
}

type Service struct {
	db       *gorm.DB
	presence *cache.PresenceCache
}

func NewService(db *gorm.DB, presence *cache.PresenceCache) *Service {
	return &Service{db: db, presence: presence}
}

// Directory returns every user except the caller, annotated with the most
// recent message exchanged and the count of their messages to the caller that
// are still unread. Ordered by last-message time descending; contacts with no
// history sort after all contacts with history. Read-only.
func (s *Service) Directory(ctx context.Context, callerID string) ([]Contact, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("id <> ?", callerID).
		Order("name asc").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	// One pass over the caller's message history, newest first, folds both
	// aggregates without a per-contact query.
	var history []models.Message
	if err := s.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", callerID, callerID).
		Order("created_at desc").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to load message history: %w", err)
	}

	type aggregate struct {
		last   *models.Message
		unread int
	}
	byContact := make(map[string]*aggregate)
	for i := range history {
		msg := &history[i]
		other := msg.SenderID
		if other == callerID {
			other = msg.ReceiverID
		}
		agg := byContact[other]
		if agg == nil {
			agg = &aggregate{}
			byContact[other] = agg
		}
		if agg.last == nil {
			agg.last = msg
		}
		if msg.ReceiverID == callerID && !msg.IsRead {
			agg.unread++
		}
	}

	contacts := make([]Contact, 0, len(users))
	for _, u := range users {
		c := Contact{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			IsOnline:  u.IsOnline || s.presence.IsOnline(ctx, u.ID),
			LastSeen:  u.LastSeen,
		}
		if agg := byContact[u.ID]; agg != nil {
			content := agg.last.Content
			at := agg.last.CreatedAt
			c.LastMessage = &content
			c.LastMessageTime = &at
			c.UnreadCount = agg.unread
		}
		contacts = append(contacts, c)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		a, b := contacts[i].LastMessageTime, contacts[j].LastMessageTime
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})

	return contacts, nil
}
