package domain

import "time"

// NotificationKind classifies a notification for display.
type NotificationKind string

const (
	NotificationHandover    NotificationKind = "handover"
	NotificationInteraction NotificationKind = "interaction"
	NotificationSystem      NotificationKind = "system"
)

// Valid checks if the kind is valid.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationHandover, NotificationInteraction, NotificationSystem:
		return true
	default:
		return false
	}
}

// Notification is a single entry in the notification center.
// Created unread; transitions to read individually or in bulk; never deleted.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Time      string           `json:"time"`
	CreatedAt time.Time        `json:"created_at,omitzero"`
	Unread    bool             `json:"unread"`
	Avatar    string           `json:"avatar,omitempty"`
}

// NotificationDraft is the caller-supplied part of a locally-created
// notification; the center assigns id, time, and the unread flag.
type NotificationDraft struct {
	Kind    NotificationKind `json:"kind" validate:"required,oneof=handover interaction system"`
	Title   string           `json:"title" validate:"required"`
	Content string           `json:"content" validate:"required"`
	Avatar  string           `json:"avatar,omitempty"`
}
