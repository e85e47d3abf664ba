package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/id"
	"github.com/yuzhenbei/booktravel/internal/validation"
)

// NotificationCenter owns the notification list, newest first, and its
// derived unread count.
type NotificationCenter struct {
	mu            sync.RWMutex
	notifications []domain.Notification
	gateway       NotificationGateway
	emitter       EventEmitter
	toasts        *ToastCenter
	validator     *validation.Validator
	logger        *slog.Logger
}

// NewNotificationCenter creates a notification center. gw and toasts may be
// nil for purely local use.
func NewNotificationCenter(gw NotificationGateway, emitter EventEmitter, toasts *ToastCenter, logger *slog.Logger) *NotificationCenter {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &NotificationCenter{
		gateway:   gw,
		emitter:   emitter,
		toasts:    toasts,
		validator: validation.New(),
		logger:    logger,
	}
}

// LoadNotifications replaces the list with the gateway's. Prior state is
// kept on failure.
func (c *NotificationCenter) LoadNotifications(ctx context.Context) error {
	if c.gateway == nil {
		return nil
	}
	list, err := c.gateway.ListNotifications(ctx)
	if err != nil {
		c.logger.Warn("notification load failed", "error", err)
		return errors.Wrap(err, errors.CodeLoadFailed, "load notifications")
	}

	c.mu.Lock()
	c.notifications = list
	c.mu.Unlock()

	c.emitChanged()
	return nil
}

// Seed fills an empty center from a cached snapshot. A center that already
// holds notifications is left alone.
func (c *NotificationCenter) Seed(notifications []domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notifications) > 0 {
		return
	}
	c.notifications = notifications
}

// AddLocal prepends a locally-originated notification: fresh id, "just now"
// time, unread. Used for events that have no fetch-based origin, like a
// handover completing.
func (c *NotificationCenter) AddLocal(draft domain.NotificationDraft) (domain.Notification, error) {
	if err := c.validator.Validate(draft); err != nil {
		return domain.Notification{}, err
	}

	notif := domain.Notification{
		ID:        id.MustGenerate("ntf"),
		Kind:      draft.Kind,
		Title:     draft.Title,
		Content:   draft.Content,
		Time:      domain.TimeJustNow,
		CreatedAt: time.Now(),
		Unread:    true,
		Avatar:    draft.Avatar,
	}

	c.mu.Lock()
	c.notifications = append([]domain.Notification{notif}, c.notifications...)
	c.mu.Unlock()

	c.emitChanged()
	if c.toasts != nil {
		c.toasts.Show(draft.Title, ToastSuccess)
	}
	return notif, nil
}

// MarkRead clears one notification's unread flag. Unknown ids are a no-op;
// marking twice is the same as marking once.
func (c *NotificationCenter) MarkRead(notifID string) {
	c.mu.Lock()
	changed := false
	for i := range c.notifications {
		if c.notifications[i].ID == notifID {
			changed = c.notifications[i].Unread
			c.notifications[i].Unread = false
			break
		}
	}
	c.mu.Unlock()

	if changed {
		c.emitChanged()
	}
}

// MarkAllRead clears every unread flag in one pass.
func (c *NotificationCenter) MarkAllRead() {
	c.mu.Lock()
	for i := range c.notifications {
		c.notifications[i].Unread = false
	}
	c.mu.Unlock()

	c.emitChanged()
}

// UnreadCount recomputes the number of unread notifications.
func (c *NotificationCenter) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for i := range c.notifications {
		if c.notifications[i].Unread {
			count++
		}
	}
	return count
}

// Notifications returns a snapshot, newest first.
func (c *NotificationCenter) Notifications() []domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *NotificationCenter) emitChanged() {
	c.emitter.Emit(events.New(events.EventNotificationsChanged, map[string]int{
		"unread_count": c.UnreadCount(),
	}))
}
