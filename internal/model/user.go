package model

import "time"

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity stored with a session and listed by the admin view
type User struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	IsBanned    bool      `json:"is_banned,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Banned reports the ban flag or a "banned" status, whichever the backend sent
func (u *User) Banned() bool {
	return u.IsBanned || u.Status == "banned"
}

// AdminStats are the counters shown on the admin dashboard
type AdminStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveToday int `json:"active_today"`
	BannedUsers int `json:"banned_users"`
}
