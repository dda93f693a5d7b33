package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/existflow/kawai/internal/model"
)

// Ban actions
const (
	actionBan   = "ban"
	actionUnban = "unban"
)

// ListUsers returns all users (admin only). It never fails.
func (c *Client) ListUsers(ctx context.Context) []model.User {
	body, err := c.get(ctx, "/api/admin/users")
	if err != nil {
		c.readFailed("users", err)
		return []model.User{}
	}
	items, err := extractList(body, "users")
	if err != nil {
		c.readFailed("users", err)
		return []model.User{}
	}
	return decodeAll(items, userFromDoc)
}

// AdminStats returns the admin counters, zero on any failure.
func (c *Client) AdminStats(ctx context.Context) model.AdminStats {
	body, err := c.get(ctx, "/api/admin/stats")
	if err != nil {
		c.readFailed("stats", err)
		return model.AdminStats{}
	}
	raw, err := extractObject(body, "stats", "data")
	if err != nil {
		c.readFailed("stats", err)
		return model.AdminStats{}
	}
	d, err := decodeDoc(raw)
	if err != nil {
		c.readFailed("stats", err)
		return model.AdminStats{}
	}
	return model.AdminStats{
		TotalUsers:  d.integer("total_users"),
		ActiveToday: d.integer("active_today"),
		BannedUsers: d.integer("banned_users"),
	}
}

// BanUser blocks a user from the bot
func (c *Client) BanUser(ctx context.Context, phone string) error {
	return c.setBan(ctx, phone, actionBan)
}

// UnbanUser lifts a ban
func (c *Client) UnbanUser(ctx context.Context, phone string) error {
	return c.setBan(ctx, phone, actionUnban)
}

func (c *Client) setBan(ctx context.Context, phone, action string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrMissingPhone
	}
	_, err := c.mutate(ctx, http.MethodPost, "/api/admin/ban", map[string]string{
		"phone_number": phone,
		"action":       action,
	})
	return err
}
