package client

import (
	"sync"
	"time"
)

// User mirrors the server's user shape.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"image"`
	IsOnline  bool      `json:"isOnline"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Contact is the directory entry: a user plus conversation aggregates. The
// same struct decodes the server response and feeds the view layer, so no
// shape bridging happens anywhere downstream.
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

// Message is the display shape used in conversations. Status values: "sent"
// (provisional, awaiting confirmation), "delivered", "read", "failed".
type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// State is the full session state. Snapshots are value copies; mutation goes
// through Store.apply exclusively.
type State struct {
	Contacts     []Contact
	Selected     string
	Messages     []Message
	Loading      bool
	SendInFlight bool
}

type event interface{ isEvent() }

type contactsLoaded struct{ contacts []Contact }

type contactSelected struct{ contactID string }

// conversationLoaded carries the contact the fetch was issued for, so a slow
// response that resolves after a contact change is discarded instead of
// clobbering the new conversation.
type conversationLoaded struct {
	contactID string
	messages  []Message
}

type sendStarted struct{ provisional Message }

type sendConfirmed struct {
	provisionalID string
	message       Message
}

type sendFailed struct{ provisionalID string }

func (contactsLoaded) isEvent() {}

func (contactSelected) isEvent() {}

func (conversationLoaded) isEvent() {}

func (sendStarted) isEvent() {}

func (sendConfirmed) isEvent() {}

func (sendFailed) isEvent() {}

// Store serializes every state transition behind one mutex.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// State returns a snapshot with copied slices.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Contacts = append([]Contact(nil), s.state.Contacts...)
	snap.Messages = append([]Message(nil), s.state.Messages...)
	return snap
}

func (s *Store) apply(ev event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case contactsLoaded:
		// The contact poll always overwrites, even mid-send.
		s.state.Contacts = e.contacts

	case contactSelected:
		s.state.Selected = e.contactID
		s.state.Loading = true
		s.state.Messages = nil

	case conversationLoaded:
		if e.contactID != s.state.Selected {
			return
		}
		s.state.Messages = e.messages
		s.state.Loading = false

	case sendStarted:
		s.state.SendInFlight = true
		s.state.Messages = append(s.state.Messages, e.provisional)
		s.updatePreview(s.state.Selected, e.provisional.Content)

	case sendConfirmed:
		s.state.SendInFlight = false
		for i := range s.state.Messages {
			if s.state.Messages[i].ID == e.provisionalID {
				s.state.Messages[i] = e.message
				break
			}
		}

	case sendFailed:
		s.state.SendInFlight = false
		for i := range s.state.Messages {
			if s.state.Messages[i].ID == e.provisionalID {
				s.state.Messages[i].Status = "failed"
				break
			}
		}
	}
}

func (s *Store) updatePreview(contactID, content string) {
	preview := Preview(content)
	now := time.Now()
	for i := range s.state.Contacts {
		if s.state.Contacts[i].ID == contactID {
			s.state.Contacts[i].LastMessage = &preview
			s.state.Contacts[i].LastMessageTime = &now
			break
		}
	}
}
