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

// FeedStore owns the ordered post collection, newest first.
type FeedStore struct {
	mu        sync.RWMutex
	posts     []domain.Post
	gateway   FeedGateway
	emitter   EventEmitter
	toasts    *ToastCenter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewFeedStore creates a feed store. toasts may be nil when no toast surface
// exists (tests, headless use).
func NewFeedStore(gw FeedGateway, emitter EventEmitter, toasts *ToastCenter, logger *slog.Logger) *FeedStore {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &FeedStore{
		gateway:   gw,
		emitter:   emitter,
		toasts:    toasts,
		validator: validation.New(),
		logger:    logger,
	}
}

// LoadPosts replaces the collection with the gateway's list. On failure the
// prior collection is left untouched and the failure is surfaced, retryable.
func (s *FeedStore) LoadPosts(ctx context.Context) error {
	posts, err := s.gateway.ListPosts(ctx)
	if err != nil {
		s.logger.Warn("feed load failed", "error", err)
		if s.toasts != nil {
			s.toasts.Show("加载数据失败", ToastInfo)
		}
		return errors.Wrap(err, errors.CodeLoadFailed, "load posts")
	}

	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventFeedRefreshed, map[string]int{"count": len(posts)}))
	return nil
}

// Seed fills an empty feed from a cached snapshot. A feed that already has
// posts is left alone; live state always wins over a snapshot.
func (s *FeedStore) Seed(posts []domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posts) > 0 {
		return
	}
	s.posts = posts
}

// Posts returns a snapshot of the full feed, newest first.
func (s *FeedStore) Posts() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotPosts(s.posts)
}

// Post returns a snapshot of one post.
func (s *FeedStore) Post(postID string) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			return clonePost(s.posts[i]), nil
		}
	}
	return domain.Post{}, errors.NotFoundf("post %s not found", postID)
}

// FilterByTag returns the posts matching the tag, preserving feed order. The
// "全部" sentinel matches everything. Never mutates the collection.
func (s *FeedStore) FilterByTag(tag string) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Post, 0, len(s.posts))
	for i := range s.posts {
		if s.posts[i].MatchesTag(tag) {
			out = append(out, clonePost(s.posts[i]))
		}
	}
	return out
}

// CreatePost prepends an optimistic post and then syncs it to the gateway.
// The optimistic post is visible to readers before the network call starts.
// On sync failure the optimistic post stays in the feed and a SyncFailed
// error is returned; the caller decides whether to surface it.
func (s *FeedStore) CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	if err := s.validator.Validate(draft); err != nil {
		return domain.Post{}, err
	}

	localID, err := id.Generate("post")
	if err != nil {
		return domain.Post{}, errors.Wrap(err, errors.CodeInternal, "generate post id")
	}

	post := domain.Post{
		ID:         localID,
		UserName:   draft.UserName,
		TargetUser: draft.TargetUser,
		Avatar1:    draft.Avatar1,
		Avatar2:    draft.Avatar2,
		Time:       domain.TimeJustNow,
		CreatedAt:  time.Now(),
		Location:   draft.Location,
		BookTitle:  draft.BookTitle,
		Content:    draft.Content,
		Image1:     draft.Image1,
		Image2:     draft.Image2,
		Tag:        draft.Tag,
	}

	s.mu.Lock()
	s.posts = append([]domain.Post{post}, s.posts...)
	s.mu.Unlock()

	s.emitter.Emit(events.New(events.EventPostCreated, post))
	if s.toasts != nil {
		s.toasts.Show("发布动态成功！", ToastSuccess)
	}

	synced, err := s.gateway.CreatePost(ctx, draft)
	if err != nil {
		s.logger.Warn("post sync failed, keeping optimistic post",
			"post_id", localID, "error", err)
		if s.toasts != nil {
			s.toasts.Show("发布同步失败", ToastInfo)
		}
		return post, errors.Wrap(err, errors.CodeSyncFailed, "sync post")
	}

	reconciled := s.reconcilePost(localID, synced)
	s.emitter.Emit(events.New(events.EventPostUpdated, reconciled))
	return reconciled, nil
}

// reconcilePost merges server-assigned fields into the optimistic post,
// keeping local-only view flags. Falls back to the synced record when the
// optimistic post was removed in the meantime.
func (s *FeedStore) reconcilePost(localID string, synced domain.Post) domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID != localID {
			continue
		}
		p := &s.posts[i]
		p.ID = synced.ID
		if synced.Time != "" {
			p.Time = synced.Time
		}
		if !synced.CreatedAt.IsZero() {
			p.CreatedAt = synced.CreatedAt
		}
		if synced.UserName != "" {
			p.UserName = synced.UserName
		}
		if synced.Avatar1 != "" {
			p.Avatar1 = synced.Avatar1
		}
		p.Likes = synced.Likes
		p.Comments = synced.Comments
		return clonePost(*p)
	}
	return synced
}

// ToggleLike flips the liked flag and adjusts the like counter atomically.
// Local-only state; no gateway reconciliation in scope.
func (s *FeedStore) ToggleLike(postID string) (domain.Post, error) {
	s.mu.Lock()
	var updated domain.Post
	found := false
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].ToggleLike()
			updated = clonePost(s.posts[i])
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return domain.Post{}, errors.NotFoundf("post %s not found", postID)
	}
	s.emitter.Emit(events.New(events.EventPostUpdated, updated))
	return updated, nil
}

// GiftCoffee marks a post as coffee-gifted. One-way: there is no un-gift.
// Raises the auto-dismissing confirmation toast.
func (s *FeedStore) GiftCoffee(postID string) (domain.Post, error) {
	s.mu.Lock()
	var updated domain.Post
	found := false
	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].HasCoffee = true
			updated = clonePost(s.posts[i])
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return domain.Post{}, errors.NotFoundf("post %s not found", postID)
	}

	s.emitter.Emit(events.New(events.EventPostUpdated, updated))
	if s.toasts != nil {
		s.toasts.Show("咖啡赠送成功！", ToastSuccess)
	}
	return updated, nil
}

// syncThread reconciles a post's comment list and counter with a freshly
// loaded thread, keeping the feed copy consistent with the open thread.
func (s *FeedStore) syncThread(postID string, comments []domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == postID {
			list := make([]domain.Comment, len(comments))
			copy(list, comments)
			s.posts[i].Comments = len(comments)
			s.posts[i].CommentsList = list
			return
		}
	}
}

// incrementComments bumps a post's comment counter and syncs its thread
// snapshot. Called by the thread store so the feed copy and the open thread
// stay in lockstep.
func (s *FeedStore) incrementComments(postID string, comments []domain.Comment) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == postID {
			s.posts[i].Comments++
			s.posts[i].CommentsList = comments
			return clonePost(s.posts[i]), true
		}
	}
	return domain.Post{}, false
}

func snapshotPosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i := range posts {
		out[i] = clonePost(posts[i])
	}
	return out
}

func clonePost(p domain.Post) domain.Post {
	if p.CommentsList != nil {
		list := make([]domain.Comment, len(p.CommentsList))
		copy(list, p.CommentsList)
		p.CommentsList = list
	}
	return p
}
