package models

import "time"

// User is created at first authentication and mutated on login/logout and
// message activity. Never deleted by this service.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	AvatarURL    string    `json:"image"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsOnline     bool      `json:"isOnline" gorm:"default:false"`
	LastSeen     time.Time `json:"lastSeen"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Message content is immutable once created; only IsRead may change, and only
// from false to true when the receiver fetches the conversation.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	SenderID   string    `json:"senderId" gorm:"index;size:36;not null"`
	ReceiverID string    `json:"receiverId" gorm:"index;size:36;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsRead     bool      `json:"isRead" gorm:"default:false"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}
