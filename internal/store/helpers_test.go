package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/events"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeFeedGateway struct {
	posts      []domain.Post
	listErr    error
	created    domain.Post
	createErr  error
	createCall int
}

func (f *fakeFeedGateway) ListPosts(context.Context) ([]domain.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.posts, nil
}

func (f *fakeFeedGateway) CreatePost(context.Context, domain.PostDraft) (domain.Post, error) {
	f.createCall++
	if f.createErr != nil {
		return domain.Post{}, f.createErr
	}
	return f.created, nil
}

type fakeThreadGateway struct {
	comments  []domain.Comment
	listErr   error
	created   domain.Comment
	createErr error
}

func (f *fakeThreadGateway) ListComments(context.Context, string) ([]domain.Comment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.comments, nil
}

func (f *fakeThreadGateway) CreateComment(context.Context, string, string) (domain.Comment, error) {
	if f.createErr != nil {
		return domain.Comment{}, f.createErr
	}
	return f.created, nil
}

type fakeBookGateway struct {
	books       []domain.Book
	listErr     error
	updateErr   error
	updateCalls []string
	applyErr    error
	createErr   error
	travelNodes []domain.TravelNode
}

func (f *fakeBookGateway) ListBooks(context.Context) ([]domain.Book, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.books, nil
}

func (f *fakeBookGateway) GetBook(_ context.Context, bookID string) (domain.Book, error) {
	for _, b := range f.books {
		if b.ID == bookID {
			return b, nil
		}
	}
	return domain.Book{}, nil
}

func (f *fakeBookGateway) CreateBook(_ context.Context, draft domain.BookDraft) (domain.Book, error) {
	if f.createErr != nil {
		return domain.Book{}, f.createErr
	}
	book := domain.Book{
		ID:       "book_new",
		Title:    draft.Title,
		Author:   draft.Author,
		Cover:    draft.Cover,
		Nickname: draft.Nickname,
		Status:   domain.BookAvailable,
	}
	f.books = append(f.books, book)
	return book, nil
}

func (f *fakeBookGateway) UpdateBookStatus(_ context.Context, bookID string, _ domain.BookStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalls = append(f.updateCalls, bookID)
	return nil
}

func (f *fakeBookGateway) ListTravelHistory(context.Context, string) ([]domain.TravelNode, error) {
	return f.travelNodes, nil
}

func (f *fakeBookGateway) ApplyForBook(context.Context, string) error {
	return f.applyErr
}

type fakeNotificationGateway struct {
	notifications []domain.Notification
	listErr       error
}

func (f *fakeNotificationGateway) ListNotifications(context.Context) ([]domain.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.notifications, nil
}
