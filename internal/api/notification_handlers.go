package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/yuzhenbei/booktravel/internal/domain"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Tags:        []string{"Notifications"},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshNotifications",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/refresh",
		Summary:     "Refresh notifications from the gateway",
		Tags:        []string{"Notifications"},
	}, s.handleRefreshNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNotification",
		Method:        http.MethodPost,
		Path:          "/api/v1/notifications",
		Summary:       "Create a local notification",
		Tags:          []string{"Notifications"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateNotification)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{notificationID}/read",
		Summary:     "Mark one notification as read",
		Tags:        []string{"Notifications"},
	}, s.handleMarkNotificationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark every notification as read",
		Tags:        []string{"Notifications"},
	}, s.handleMarkAllNotificationsRead)
}

// === DTOs ===

// NotificationsResponse contains the notification center contents.
type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications" doc:"Notifications, newest first"`
	UnreadCount   int                   `json:"unread_count" doc:"Number of unread notifications"`
}

// NotificationsOutput wraps the notifications response for Huma.
type NotificationsOutput struct {
	Body NotificationsResponse
}

// CreateNotificationInput carries the draft of a local notification.
type CreateNotificationInput struct {
	Body domain.NotificationDraft
}

// NotificationOutput wraps a single notification for Huma.
type NotificationOutput struct {
	Body domain.Notification
}

// MarkNotificationReadInput identifies a notification to mark read.
type MarkNotificationReadInput struct {
	NotificationID string `path:"notificationID" doc:"Notification ID"`
}

// === Handlers ===

func (s *Server) handleListNotifications(_ context.Context, _ *struct{}) (*NotificationsOutput, error) {
	return s.notificationsOutput(), nil
}

func (s *Server) handleRefreshNotifications(ctx context.Context, _ *struct{}) (*NotificationsOutput, error) {
	if err := s.notifications.LoadNotifications(ctx); err != nil {
		return nil, err
	}
	return s.notificationsOutput(), nil
}

func (s *Server) handleCreateNotification(_ context.Context, input *CreateNotificationInput) (*NotificationOutput, error) {
	notif, err := s.notifications.AddLocal(input.Body)
	if err != nil {
		return nil, err
	}
	return &NotificationOutput{Body: notif}, nil
}

func (s *Server) handleMarkNotificationRead(_ context.Context, input *MarkNotificationReadInput) (*NotificationsOutput, error) {
	s.notifications.MarkRead(input.NotificationID)
	return s.notificationsOutput(), nil
}

func (s *Server) handleMarkAllNotificationsRead(_ context.Context, _ *struct{}) (*NotificationsOutput, error) {
	s.notifications.MarkAllRead()
	return s.notificationsOutput(), nil
}

func (s *Server) notificationsOutput() *NotificationsOutput {
	out := &NotificationsOutput{}
	out.Body.Notifications = s.notifications.Notifications()
	out.Body.UnreadCount = s.notifications.UnreadCount()
	return out
}
