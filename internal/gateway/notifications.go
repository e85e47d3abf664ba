package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/yuzhenbei/booktravel/internal/domain"
)

// ListNotifications returns the signed-in user's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	query := url.Values{
		"select": {"id,kind,title,content,avatar_url,read,created_at"},
		"order":  {"created_at.desc"},
	}

	var rows []notificationRow
	if err := c.do(ctx, http.MethodGet, "notifications", "/rest/v1/notifications", query, nil, &rows); err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]domain.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain(now))
	}
	return out, nil
}
