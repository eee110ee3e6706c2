package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeServer is an in-memory chat backend covering the endpoints the
// controller talks to.
type fakeServer struct {
	mu       sync.Mutex
	contacts []Contact
	messages map[string][]Message // keyed by counterpart ID

	blockSend chan struct{} // when non-nil, POST /api/messages waits on it
	failSend  bool
	sends     int
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.contacts)
	})

	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			f.mu.Lock()
			msgs := f.messages[r.URL.Query().Get("userId")]
			f.mu.Unlock()
			if msgs == nil {
				msgs = []Message{}
			}
			_ = json.NewEncoder(w).Encode(msgs)
			return
		}

		if f.blockSend != nil {
			<-f.blockSend
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.sends++
		if f.failSend {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal Server Error"})
			return
		}

		var req struct {
			ReceiverID string `json:"receiverId"`
			Content    string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		msg := Message{
			ID:      "srv-1",
			Content: req.Content,
			Sender:  "me",
			Time:    "9:00 AM",
			Status:  "delivered",
		}
		f.messages[req.ReceiverID] = append(f.messages[req.ReceiverID], msg)
		_ = json.NewEncoder(w).Encode(msg)
	})

	return mux
}

func newTestController(t *testing.T, f *fakeServer, opts ...Option) *Controller {
	t.Helper()

	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	api := NewAPI(srv.URL)
	api.SetToken("test-token")
	if len(opts) == 0 {
		// Long intervals so tests drive fetches explicitly.
		opts = []Option{WithIntervals(time.Hour, time.Hour)}
	}
	return NewController(api, zap.NewNop(), opts...)
}

func TestStartSelectsFirstContact(t *testing.T) {
	f := &fakeServer{
		contacts: []Contact{{ID: "c1", Name: "Alice"}, {ID: "c2", Name: "Bob"}},
		messages: map[string][]Message{
			"c1": {{ID: "m1", Content: "hi", Sender: "them", Status: "read"}},
		},
	}
	ctrl := newTestController(t, f)
	defer ctrl.Close()

	require.NoError(t, ctrl.Start(context.Background()))

	state := ctrl.State()
	assert.Equal(t, "c1", state.Selected)
	assert.False(t, state.Loading)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "hi", state.Messages[0].Content)
}

func TestOptimisticSend(t *testing.T) {
	f := &fakeServer{
		contacts:  []Contact{{ID: "c1", Name: "Alice"}},
		messages:  map[string][]Message{},
		blockSend: make(chan struct{}),
	}
	ctrl := newTestController(t, f)
	defer ctrl.Close()
	require.NoError(t, ctrl.Start(context.Background()))

	done := make(chan error, 1)
	go func() { done <- ctrl.Send(context.Background(), "hello") }()

	// The provisional entry must appear before the network response returns.
	require.Eventually(t, func() bool {
		state := ctrl.State()
		return len(state.Messages) == 1 && state.SendInFlight
	}, time.Second, 5*time.Millisecond)

	state := ctrl.State()
	assert.Equal(t, "hello", state.Messages[0].Content)
	assert.Equal(t, "sent", state.Messages[0].Status)
	assert.Contains(t, state.Messages[0].ID, "local-")
	require.NotNil(t, state.Contacts[0].LastMessage)
	assert.Equal(t, "hello", *state.Contacts[0].LastMessage)

	close(f.blockSend)
	require.NoError(t, <-done)

	state = ctrl.State()
	assert.False(t, state.SendInFlight)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "srv-1", state.Messages[0].ID, "provisional replaced by server message")
	assert.Equal(t, "delivered", state.Messages[0].Status)
}

func TestSendFailureIsRepresented(t *testing.T) {
	f := &fakeServer{
		contacts: []Contact{{ID: "c1"}},
		messages: map[string][]Message{},
		failSend: true,
	}
	ctrl := newTestController(t, f)
	defer ctrl.Close()
	require.NoError(t, ctrl.Start(context.Background()))

	err := ctrl.Send(context.Background(), "doomed")
	assert.Error(t, err)

	state := ctrl.State()
	assert.False(t, state.SendInFlight)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, "failed", state.Messages[0].Status)
	assert.Equal(t, "doomed", state.Messages[0].Content)
}

func TestConversationPolling(t *testing.T) {
	f := &fakeServer{
		contacts: []Contact{{ID: "c1"}},
		messages: map[string][]Message{},
	}
	ctrl := newTestController(t, f, WithIntervals(10*time.Millisecond, time.Hour))
	defer ctrl.Close()
	require.NoError(t, ctrl.Start(context.Background()))
	assert.Empty(t, ctrl.State().Messages)

	// A message arrives server-side; the poll loop must pick it up.
	f.mu.Lock()
	f.messages["c1"] = []Message{{ID: "m1", Content: "surprise", Sender: "them", Status: "delivered"}}
	f.mu.Unlock()

	require.Eventually(t, func() bool {
		return len(ctrl.State().Messages) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "surprise", ctrl.State().Messages[0].Content)
}

func TestContactPollingOverwrites(t *testing.T) {
	f := &fakeServer{
		contacts: []Contact{{ID: "c1", Name: "Alice"}},
		messages: map[string][]Message{},
	}
	ctrl := newTestController(t, f, WithIntervals(time.Hour, 10*time.Millisecond))
	defer ctrl.Close()
	require.NoError(t, ctrl.Start(context.Background()))

	f.mu.Lock()
	f.contacts = []Contact{{ID: "c1", Name: "Alice"}, {ID: "c2", Name: "Bob"}}
	f.mu.Unlock()

	require.Eventually(t, func() bool {
		return len(ctrl.State().Contacts) == 2
	}, time.Second, 5*time.Millisecond)
}
