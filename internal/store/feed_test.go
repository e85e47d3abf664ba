package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
	"github.com/yuzhenbei/booktravel/internal/events"
)

func newFeedStore(t *testing.T, gw *fakeFeedGateway) (*FeedStore, *recordingEmitter) {
	t.Helper()
	emitter := &recordingEmitter{}
	return NewFeedStore(gw, emitter, nil, testLogger()), emitter
}

func seedPosts(t *testing.T, s *FeedStore, gw *fakeFeedGateway, posts []domain.Post) {
	t.Helper()
	gw.posts = posts
	require.NoError(t, s.LoadPosts(context.Background()))
}

func TestLoadPostsReplacesCollection(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, emitter := newFeedStore(t, gw)

	seedPosts(t, s, gw, []domain.Post{{ID: "p1"}, {ID: "p2"}})
	assert.Len(t, s.Posts(), 2)
	assert.Contains(t, emitter.types(), events.EventFeedRefreshed)
}

func TestLoadPostsFailureKeepsPriorState(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)
	seedPosts(t, s, gw, []domain.Post{{ID: "p1"}})

	gw.listErr = errors.Transport("backend down")
	err := s.LoadPosts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrLoadFailed)

	assert.Len(t, s.Posts(), 1, "prior collection untouched")
}

func TestCreatePostOptimisticOnEmptyFeed(t *testing.T) {
	gw := &fakeFeedGateway{created: domain.Post{
		ID:        "post-server",
		Time:      domain.TimeJustNow,
		CreatedAt: time.Now(),
	}}
	s, emitter := newFeedStore(t, gw)

	post, err := s.CreatePost(context.Background(), domain.PostDraft{
		UserName:  "小林",
		BookTitle: "小王子",
		Content:   "hello",
	})
	require.NoError(t, err)

	feed := s.Posts()
	require.Len(t, feed, 1)
	assert.Equal(t, 0, feed[0].Likes)
	assert.Equal(t, 0, feed[0].Comments)
	assert.Equal(t, "post-server", post.ID, "server id reconciled in")
	assert.Contains(t, emitter.types(), events.EventPostCreated)
	assert.Contains(t, emitter.types(), events.EventPostUpdated)
}

func TestCreatePostKeepsOptimisticStateOnSyncFailure(t *testing.T) {
	gw := &fakeFeedGateway{createErr: errors.Transport("backend down")}
	s, _ := newFeedStore(t, gw)

	post, err := s.CreatePost(context.Background(), domain.PostDraft{
		BookTitle: "活着",
		Content:   "hello",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSyncFailed)

	feed := s.Posts()
	require.Len(t, feed, 1, "optimistic post is not rolled back")
	assert.Equal(t, post.ID, feed[0].ID)
	assert.Equal(t, domain.TimeJustNow, feed[0].Time)
	assert.NotEmpty(t, post.ID)
}

func TestCreatePostGeneratesDistinctIDs(t *testing.T) {
	gw := &fakeFeedGateway{createErr: errors.Transport("offline")}
	s, _ := newFeedStore(t, gw)

	draft := domain.PostDraft{BookTitle: "X", Content: "hello"}
	seen := make(map[string]bool)
	for range 20 {
		post, _ := s.CreatePost(context.Background(), draft)
		assert.False(t, seen[post.ID], "id %s repeated", post.ID)
		seen[post.ID] = true
	}
}

func TestCreatePostRejectsInvalidDraft(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)

	_, err := s.CreatePost(context.Background(), domain.PostDraft{Content: "no book"})
	require.Error(t, err)
	assert.Empty(t, s.Posts())
	assert.Zero(t, gw.createCall, "gateway not reached for invalid drafts")
}

func TestToggleLikeScenario(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)
	seedPosts(t, s, gw, []domain.Post{{ID: "p1", Tag: "A", Likes: 5, Liked: false}})

	post, err := s.ToggleLike("p1")
	require.NoError(t, err)
	assert.Equal(t, 6, post.Likes)
	assert.True(t, post.Liked)

	post, err = s.ToggleLike("p1")
	require.NoError(t, err)
	assert.Equal(t, 5, post.Likes)
	assert.False(t, post.Liked)
}

func TestToggleLikeParity(t *testing.T) {
	for _, calls := range []int{1, 2, 3, 4, 7, 10} {
		gw := &fakeFeedGateway{}
		s, _ := newFeedStore(t, gw)
		seedPosts(t, s, gw, []domain.Post{{ID: "p1", Likes: 5}})

		for range calls {
			_, err := s.ToggleLike("p1")
			require.NoError(t, err)
		}

		post, err := s.Post("p1")
		require.NoError(t, err)
		odd := calls%2 == 1
		assert.Equal(t, odd, post.Liked, "%d calls", calls)
		want := 5
		if odd {
			want = 6
		}
		assert.Equal(t, want, post.Likes, "%d calls", calls)
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)

	_, err := s.ToggleLike("missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGiftCoffeeIsOneWay(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)
	seedPosts(t, s, gw, []domain.Post{{ID: "p1"}})

	post, err := s.GiftCoffee("p1")
	require.NoError(t, err)
	assert.True(t, post.HasCoffee)

	// Gifting again does not toggle off.
	post, err = s.GiftCoffee("p1")
	require.NoError(t, err)
	assert.True(t, post.HasCoffee)
}

func TestFilterByTagAllSentinelReturnsFullFeedInOrder(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)
	seedPosts(t, s, gw, []domain.Post{
		{ID: "p1", Tag: "读书笔记"},
		{ID: "p2", Tag: "新书上架"},
		{ID: "p3"},
	})

	all := s.FilterByTag(domain.TagAll)
	require.Len(t, all, 3)
	assert.Equal(t, "p1", all[0].ID)
	assert.Equal(t, "p2", all[1].ID)
	assert.Equal(t, "p3", all[2].ID)
}

func TestFilterByTagExactMatchDoesNotMutate(t *testing.T) {
	gw := &fakeFeedGateway{}
	s, _ := newFeedStore(t, gw)
	seedPosts(t, s, gw, []domain.Post{
		{ID: "p1", Tag: "读书笔记"},
		{ID: "p2", Tag: "新书上架"},
	})

	filtered := s.FilterByTag("读书笔记")
	require.Len(t, filtered, 1)
	assert.Equal(t, "p1", filtered[0].ID)

	assert.Len(t, s.Posts(), 2, "underlying collection unchanged")
}
