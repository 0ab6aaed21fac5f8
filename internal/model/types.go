package model

import (
	"slices"
	"time"
)

// Profile is the authenticated user snapshot served by the console API.
type Profile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Superadmin  bool     `json:"is_superadmin"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRole reports whether the profile carries the named role.
func (p *Profile) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// HasPermission reports whether the profile carries the named permission.
func (p *Profile) HasPermission(perm string) bool {
	return slices.Contains(p.Permissions, perm)
}

// Clone returns a deep copy so callers can hold a snapshot without
// racing against later updates.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Roles = slices.Clone(p.Roles)
	c.Permissions = slices.Clone(p.Permissions)
	return &c
}

// Notification is a single alert shown in the console notification tray.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketMessage is a chat message on a support ticket, delivered to the
// user the ticket is assigned to.
type TicketMessage struct {
	TicketID  int64     `json:"ticket_id"`
	MessageID string    `json:"message_id"`
	UserID    string    `json:"user_id"`
	Preview   string    `json:"preview"`
	SentAt    time.Time `json:"sent_at"`
}
