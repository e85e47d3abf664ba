package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
	"github.com/yuzhenbei/booktravel/internal/events"
)

// ThreadStore drives the single open comment thread. Comments load lazily
// when a thread opens, never eagerly for the whole feed. At most one thread
// is active at a time, mirroring the one comment sheet the view shows.
type ThreadStore struct {
	mu      sync.RWMutex
	feed    *FeedStore
	gateway ThreadGateway
	emitter EventEmitter
	logger  *slog.Logger

	active bool
	post   domain.Post
}

// NewThreadStore creates a thread store bound to the feed store whose copy of
// each post's comment counter must stay in lockstep with the open thread.
func NewThreadStore(feed *FeedStore, gw ThreadGateway, emitter EventEmitter, logger *slog.Logger) *ThreadStore {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &ThreadStore{
		feed:    feed,
		gateway: gw,
		emitter: emitter,
		logger:  logger,
	}
}

// OpenThread marks the post active for comments with an empty list, then
// fetches the real list from the gateway, oldest first. On fetch failure the
// thread stays open and empty; the caller may Retry.
func (s *ThreadStore) OpenThread(ctx context.Context, postID string) (domain.Post, error) {
	post, err := s.feed.Post(postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.CommentsList = []domain.Comment{}

	s.mu.Lock()
	s.active = true
	s.post = post
	s.mu.Unlock()

	return s.fetch(ctx, postID)
}

// Retry re-fetches the active thread's comments after a failed load.
func (s *ThreadStore) Retry(ctx context.Context) (domain.Post, error) {
	s.mu.RLock()
	if !s.active {
		s.mu.RUnlock()
		return domain.Post{}, errors.Validation("no active thread")
	}
	postID := s.post.ID
	s.mu.RUnlock()

	return s.fetch(ctx, postID)
}

func (s *ThreadStore) fetch(ctx context.Context, postID string) (domain.Post, error) {
	comments, err := s.gateway.ListComments(ctx, postID)
	if err != nil {
		s.logger.Warn("comment load failed", "post_id", postID, "error", err)
		s.mu.RLock()
		post := clonePost(s.post)
		s.mu.RUnlock()
		return post, errors.Wrap(err, errors.CodeLoadFailed, "load comments")
	}

	s.mu.Lock()
	if !s.active || s.post.ID != postID {
		// Thread was closed or switched while the fetch was in flight;
		// discard the result.
		post := clonePost(s.post)
		s.mu.Unlock()
		return post, nil
	}
	s.post.CommentsList = comments
	s.post.Comments = len(comments)
	post := clonePost(s.post)
	s.mu.Unlock()

	s.feed.syncThread(postID, comments)
	return post, nil
}

// Active returns a snapshot of the open thread's post, if any.
func (s *ThreadStore) Active() (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.active {
		return domain.Post{}, false
	}
	return clonePost(s.post), true
}

// CloseThread closes the open thread. Idempotent.
func (s *ThreadStore) CloseThread() {
	s.mu.Lock()
	s.active = false
	s.post = domain.Post{}
	s.mu.Unlock()
}

// SendComment persists a comment on the active thread and prepends the
// gateway's record, newest first within the thread view. The parent post's
// comment counter moves by exactly one in both the thread copy and the feed
// copy. Whitespace-only text, or no active thread, is a no-op. Strict
// failure policy: on gateway error nothing changes locally.
func (s *ThreadStore) SendComment(ctx context.Context, text string) (domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Comment{}, nil
	}

	s.mu.RLock()
	if !s.active {
		s.mu.RUnlock()
		return domain.Comment{}, nil
	}
	postID := s.post.ID
	s.mu.RUnlock()

	comment, err := s.gateway.CreateComment(ctx, postID, text)
	if err != nil {
		s.logger.Warn("comment send failed", "post_id", postID, "error", err)
		return domain.Comment{}, errors.Wrap(err, errors.CodeTransport, "send comment")
	}

	s.mu.Lock()
	if !s.active || s.post.ID != postID {
		// Thread changed mid-flight; the comment is persisted remotely but
		// there is no local thread to update.
		s.mu.Unlock()
		return comment, nil
	}
	s.post.CommentsList = append([]domain.Comment{comment}, s.post.CommentsList...)
	s.post.Comments++
	threadComments := make([]domain.Comment, len(s.post.CommentsList))
	copy(threadComments, s.post.CommentsList)
	s.mu.Unlock()

	if updated, ok := s.feed.incrementComments(postID, threadComments); ok {
		s.emitter.Emit(events.New(events.EventPostUpdated, updated))
	}
	s.emitter.Emit(events.New(events.EventCommentAdded, comment))
	return comment, nil
}
