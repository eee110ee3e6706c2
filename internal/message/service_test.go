package message

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chatline/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Message{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		LastSeen:     time.Now(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedMessage(t *testing.T, db *gorm.DB, sender, receiver *models.User, content string, at time.Time) *models.Message {
	t.Helper()

	m := &models.Message{
		ID:         uuid.New().String(),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    content,
		CreatedAt:  at,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestConversationOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	now := time.Now()

	// Seeded out of order on purpose.
	seedMessage(t, db, alice, bob, "third", now)
	seedMessage(t, db, bob, alice, "first", now.Add(-2*time.Minute))
	seedMessage(t, db, alice, bob, "second", now.Add(-time.Minute))

	msgs, err := svc.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, []string{"first", "second", "third"},
		[]string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
	assert.Equal(t, "them", msgs[0].Sender)
	assert.Equal(t, "me", msgs[1].Sender)
}

func TestConversationMarksCounterpartMessagesRead(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	seedMessage(t, db, bob, alice, "hi", time.Now().Add(-time.Minute))
	seedMessage(t, db, alice, bob, "hey", time.Now())
	untouched := seedMessage(t, db, carol, alice, "other thread", time.Now())

	_, err := svc.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	var fromBob models.Message
	require.NoError(t, db.Where("sender_id = ?", bob.ID).First(&fromBob).Error)
	assert.True(t, fromBob.IsRead, "bob→alice must be read after alice fetched")

	// Alice's own message to bob stays unread until bob fetches.
	var fromAlice models.Message
	require.NoError(t, db.Where("sender_id = ?", alice.ID).First(&fromAlice).Error)
	assert.False(t, fromAlice.IsRead)

	// A different conversation is untouched.
	var other models.Message
	require.NoError(t, db.Where("id = ?", untouched.ID).First(&other).Error)
	assert.False(t, other.IsRead)
}

func TestConversationRequiresCounterpart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.Conversation(context.Background(), uuid.New().String(), "")
	assert.ErrorIs(t, err, ErrMissingCounterpart)
}

func TestSendValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("empty content rejected before persistence", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, bob.ID, "")
		assert.ErrorIs(t, err, ErrMissingReceiver)

		var count int64
		require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("missing receiver rejected", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, "", "hello")
		assert.ErrorIs(t, err, ErrMissingReceiver)
	})
}

func TestSendPersistsAndUpdatesPresence(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	sent, err := svc.Send(ctx, alice.ID, bob.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "me", sent.Sender)
	assert.Equal(t, "delivered", sent.Status)
	assert.Equal(t, "hello", sent.Content)
	assert.NotEmpty(t, sent.ID)

	var stored models.Message
	require.NoError(t, db.Where("id = ?", sent.ID).First(&stored).Error)
	assert.False(t, stored.IsRead)
	assert.Equal(t, alice.ID, stored.SenderID)
	assert.Equal(t, bob.ID, stored.ReceiverID)

	var sender models.User
	require.NoError(t, db.Where("id = ?", alice.ID).First(&sender).Error)
	assert.True(t, sender.IsOnline)
}

// End-to-end store semantics: A sends "hello" to B; B's fetch ends with that
// message tagged "them", and B's unread count for A drops from 1 to 0.
func TestSendThenFetchScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")

	_, err := svc.Send(ctx, a.ID, b.ID, "hello")
	require.NoError(t, err)

	var unread int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", a.ID, b.ID, false).
		Count(&unread).Error)
	assert.EqualValues(t, 1, unread)

	msgs, err := svc.Conversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, "hello", last.Content)
	assert.Equal(t, "them", last.Sender)

	require.NoError(t, db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", a.ID, b.ID, false).
		Count(&unread).Error)
	assert.Zero(t, unread)
}
