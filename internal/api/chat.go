package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/existflow/kawai/internal/model"
)

// ChatHistory returns the legacy chat log for phone. It never fails.
func (c *Client) ChatHistory(ctx context.Context, phone string) []model.ChatMessage {
	body, err := c.get(ctx, "/api/chat/history?phone="+url.QueryEscape(phone))
	if err != nil {
		c.readFailed("chat", err)
		return []model.ChatMessage{}
	}
	items, err := extractList(body, "messages", "history")
	if err != nil {
		c.readFailed("chat", err)
		return []model.ChatMessage{}
	}
	return decodeAll(items, chatFromDoc)
}

// ChatSend is an outgoing legacy chat message
type ChatSend struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

// SendChat posts a message through the legacy chat endpoint
func (c *Client) SendChat(ctx context.Context, m ChatSend) error {
	if m.PhoneNumber == "" {
		return ErrMissingPhone
	}
	_, err := c.mutate(ctx, http.MethodPost, "/api/chat/send", m)
	return err
}

// LegacyDashboard returns the raw aggregate of the old dashboard endpoint,
// unwrapped from data. It never fails; a failure yields an empty map.
func (c *Client) LegacyDashboard(ctx context.Context, phone string) map[string]any {
	out := map[string]any{}
	body, err := c.get(ctx, "/api/dashboard?phone="+url.QueryEscape(phone))
	if err != nil {
		c.readFailed("dashboard", err)
		return out
	}
	raw, err := extractObject(body, "data")
	if err != nil {
		c.readFailed("dashboard", err)
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.readFailed("dashboard", err)
		return map[string]any{}
	}
	return out
}
