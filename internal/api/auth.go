package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/existflow/kawai/internal/model"
)

// LoginResult is a successful admin login
type LoginResult struct {
	Token string
	User  model.User // May be partial; the caller fills gaps from the token
}

// AdminLogin exchanges an admin phone number and password for a token.
// The phone is sent as both username and phone_number. A response without
// status "success" or without a token is an error.
func (c *Client) AdminLogin(ctx context.Context, phone, password string) (*LoginResult, error) {
	body, err := c.mutate(ctx, http.MethodPost, "/api/admin/login", map[string]string{
		"username":     phone,
		"phone_number": phone,
		"password":     password,
	})
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &APIError{Status: http.StatusOK, Message: FallbackMessage, Err: err}
	}
	// Some deployments wrap the payload in data.
	fields := top
	if raw, ok := top["data"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(raw, &inner) == nil {
			fields = inner
		}
	}

	status := rawString(top["status"])
	if status == "" {
		status = rawString(fields["status"])
	}
	tok := rawString(fields["token"])
	if tok == "" {
		tok = rawString(top["token"])
	}
	if !strings.EqualFold(status, "success") || tok == "" {
		var msg map[string]any
		_ = json.Unmarshal(body, &msg)
		return nil, &APIError{Status: http.StatusOK, Message: messageOf(msg)}
	}

	res := &LoginResult{Token: tok}
	if raw, ok := fields["user"]; ok {
		if d, err := decodeDoc(raw); err == nil {
			res.User = userFromDoc(d)
		}
	}
	return res, nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// RegisterRequest is a new account
type RegisterRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	SecretCode  string `json:"secret_code,omitempty"`
}

// Register creates an account. Callers validate the form first.
func (c *Client) Register(ctx context.Context, r RegisterRequest) error {
	_, err := c.mutate(ctx, http.MethodPost, "/api/register", r)
	return err
}
