package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
}

type unreadCountResponse struct {
	Count int `json:"count"`
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := c.get(ctx, "/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetNotifications fetches the most recent notifications, newest first,
// along with the server's unread count. limit <= 0 uses the server
// default page size.
func (c *Client) GetNotifications(ctx context.Context, limit int) ([]model.Notification, int, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	var resp notificationsResponse
	if err := c.get(ctx, "/notifications", query, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Notifications, resp.UnreadCount, nil
}

// GetUnreadCount fetches just the unread notification count.
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	var resp unreadCountResponse
	if err := c.get(ctx, "/notifications/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
