package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultConversationInterval = 3 * time.Second
	defaultContactsInterval     = 10 * time.Second
)

// Controller owns the chat session: the contact list, the active
// conversation, two polling loops and the optimistic-send protocol. The view
// layer reads snapshots via State() and calls Select/Send on user input.
type Controller struct {
	api    *API
	store  *Store
	logger *zap.Logger

	conversationInterval time.Duration
	contactsInterval     time.Duration

	// Per-loop single-flight guards: a tick is skipped while the previous
	// fetch for that loop has not resolved, so a slow response can never be
	// applied after a newer one (last request issued wins).
	conversationBusy atomic.Bool
	contactsBusy     atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Controller)

func WithIntervals(conversation, contacts time.Duration) Option {
	return func(c *Controller) {
		c.conversationInterval = conversation
		c.contactsInterval = contacts
	}
}

func NewController(api *API, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:                  api,
		store:                NewStore(),
		logger:               logger,
		conversationInterval: defaultConversationInterval,
		contactsInterval:     defaultContactsInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	return c.store.State()
}

// Start fetches the directory once, selects the first contact if any, and
// launches the two polling loops. Call Close to stop them.
func (c *Controller) Start(ctx context.Context) error {
	contacts, err := c.api.Contacts(ctx)
	if err != nil {
		return err
	}
	c.store.apply(contactsLoaded{contacts: contacts})

	if len(contacts) > 0 {
		c.Select(ctx, contacts[0].ID)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(2)
	go c.pollConversation(loopCtx)
	go c.pollContacts(loopCtx)
	return nil
}

// Close stops both polling loops and waits for in-flight ticks to finish.
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Select switches the active conversation: loading is set, the conversation
// is fetched and local state replaced with the server result. A fetch failure
// is logged and the previous (now empty) list stays until the next poll tick.
func (c *Controller) Select(ctx context.Context, contactID string) {
	c.store.apply(contactSelected{contactID: contactID})
	c.fetchConversation(ctx, contactID)
}

// Send runs the optimistic-send protocol: a provisional message keyed by a
// client-generated ID is appended immediately and the contact preview updated,
// then the request is issued. On success the provisional entry is replaced by
// the server-confirmed message; on failure it is marked "failed". The
// in-flight flag is cleared on both paths so polling resumes.
func (c *Controller) Send(ctx context.Context, content string) error {
	receiverID := c.store.State().Selected
	if receiverID == "" || content == "" {
		return nil
	}

	provisional := Message{
		ID:      "local-" + uuid.New().String(),
		Content: content,
		Sender:  "me",
		Time:    time.Now().Format("3:04 PM"),
		Status:  "sent",
	}
	c.store.apply(sendStarted{provisional: provisional})

	confirmed, err := c.api.Send(ctx, receiverID, content)
	if err != nil {
		c.logger.Warn("send failed", zap.String("receiverId", receiverID), zap.Error(err))
		c.store.apply(sendFailed{provisionalID: provisional.ID})
		return err
	}

	c.store.apply(sendConfirmed{provisionalID: provisional.ID, message: confirmed})
	return nil
}

func (c *Controller) pollConversation(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.conversationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			state := c.store.State()
			if state.Selected == "" || state.SendInFlight {
				continue
			}
			if !c.conversationBusy.CompareAndSwap(false, true) {
				continue
			}
			c.fetchConversation(ctx, state.Selected)
			c.conversationBusy.Store(false)
		}
	}
}

func (c *Controller) pollContacts(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.contactsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.contactsBusy.CompareAndSwap(false, true) {
				continue
			}
			contacts, err := c.api.Contacts(ctx)
			if err != nil {
				c.logger.Warn("contact poll failed", zap.Error(err))
			} else {
				c.store.apply(contactsLoaded{contacts: contacts})
			}
			c.contactsBusy.Store(false)
		}
	}
}

func (c *Controller) fetchConversation(ctx context.Context, contactID string) {
	msgs, err := c.api.Conversation(ctx, contactID)
	if err != nil {
		// Previous local state is retained; no user-visible error surface.
		c.logger.Warn("conversation fetch failed",
			zap.String("contactId", contactID), zap.Error(err))
		return
	}
	c.store.apply(conversationLoaded{contactID: contactID, messages: msgs})
}
