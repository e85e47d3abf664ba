// Package store implements the optimistic synchronization layer between view
// actions and the remote gateway. Each store exclusively owns its in-memory
// collection; views read snapshots and invoke mutations, never touch state
// directly. Mutations apply their optimistic local change before the gateway
// call is issued, so a caller always observes the optimistic state first and
// the reconciled (or failed) state after the call returns.
package store

import (
	"context"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/events"
)

// EventEmitter receives change announcements from the stores. Implemented by
// events.Manager; emission must never block a mutation.
type EventEmitter interface {
	Emit(event events.Event)
}

// noopEmitter backs stores constructed without an emitter.
type noopEmitter struct{}

func (noopEmitter) Emit(events.Event) {}

// FeedGateway is the slice of the remote gateway the feed store consumes.
type FeedGateway interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error)
}

// ThreadGateway is the slice of the remote gateway the thread store consumes.
type ThreadGateway interface {
	ListComments(ctx context.Context, postID string) ([]domain.Comment, error)
	CreateComment(ctx context.Context, postID, content string) (domain.Comment, error)
}

// BookGateway is the slice of the remote gateway the station store consumes.
type BookGateway interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	CreateBook(ctx context.Context, draft domain.BookDraft) (domain.Book, error)
	UpdateBookStatus(ctx context.Context, bookID string, status domain.BookStatus) error
	ListTravelHistory(ctx context.Context, bookID string) ([]domain.TravelNode, error)
	ApplyForBook(ctx context.Context, bookID string) error
}

// NotificationGateway is the slice of the remote gateway the notification
// center consumes.
type NotificationGateway interface {
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
}
