package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// API is a thin JSON client for the chat endpoints. It carries the session
// token and nothing else; all state lives in the controller.
type API struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the session token used on authenticated calls.
func (a *API) SetToken(token string) {
	a.token = token
}

func (a *API) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and installs the returned session token.
func (a *API) Login(ctx context.Context, email, password string) (User, error) {
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	err := a.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return User{}, err
	}
	a.token = resp.Token
	return resp.User, nil
}

func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Contacts fetches the directory listing.
func (a *API) Contacts(ctx context.Context) ([]Contact, error) {
	var contacts []Contact
	if err := a.do(ctx, http.MethodGet, "/api/users", nil, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// Conversation fetches all messages with the counterpart. Server-side this
// also marks their messages to us as read.
func (a *API) Conversation(ctx context.Context, userID string) ([]Message, error) {
	var msgs []Message
	path := "/api/messages?userId=" + url.QueryEscape(userID)
	if err := a.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Send posts a message and returns the server-confirmed representation.
func (a *API) Send(ctx context.Context, receiverID, content string) (Message, error) {
	var msg Message
	err := a.do(ctx, http.MethodPost, "/api/messages",
		map[string]string{"receiverId": receiverID, "content": content}, &msg)
	return msg, err
}

// Ask relays a single prompt to the assistant endpoint.
func (a *API) Ask(ctx context.Context, message string) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	err := a.do(ctx, http.MethodPost, "/api/ai", map[string]string{"message": message}, &resp)
	return resp.Response, err
}
