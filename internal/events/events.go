// Package events implements the Server-Sent Events change stream the view
// layer subscribes to. Store mutations are announced here so every open view
// converges on the station's local state without polling.
package events

import "time"

// Type identifies the kind of change an event announces.
type Type string

const (
	// EventFeedRefreshed fires after the feed store replaces its snapshot
	// from the gateway.
	EventFeedRefreshed Type = "feed.refreshed"
	// EventPostCreated fires when a post is optimistically added.
	EventPostCreated Type = "feed.post_created"
	// EventPostUpdated fires on like toggles, coffee gifts, and comment
	// counter changes.
	EventPostUpdated Type = "feed.post_updated"

	// EventCommentAdded fires when a comment lands in a post's thread.
	EventCommentAdded Type = "thread.comment_added"

	// EventNotificationsChanged fires whenever the notification center's
	// list or unread count moves.
	EventNotificationsChanged Type = "notifications.changed"

	// EventBookUpdated fires when a hosted book's status or annotations
	// change.
	EventBookUpdated Type = "station.book_updated"
	// EventHandoverUpdated fires on each handover state transition.
	EventHandoverUpdated Type = "station.handover_updated"

	// EventToastShown and EventToastDismissed bracket a transient toast's
	// lifetime.
	EventToastShown     Type = "toast.shown"
	EventToastDismissed Type = "toast.dismissed"

	// EventHeartbeat keeps idle connections alive.
	EventHeartbeat Type = "heartbeat"
)

// Event is one change announcement. Data carries the event payload as a
// JSON-marshalable value so the view can render without a follow-up fetch.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      Type      `json:"type"`
}

// New builds an event stamped with the current time.
func New(t Type, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return New(EventHeartbeat, map[string]time.Time{"server_time": time.Now()})
}
