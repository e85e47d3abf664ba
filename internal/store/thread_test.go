package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

func newThreadFixture(t *testing.T, tg *fakeThreadGateway) (*ThreadStore, *FeedStore, *fakeFeedGateway) {
	t.Helper()
	fg := &fakeFeedGateway{}
	feed, _ := newFeedStore(t, fg)
	seedPosts(t, feed, fg, []domain.Post{
		{ID: "p1", Comments: 2},
		{ID: "p2", Comments: 0},
	})
	return NewThreadStore(feed, tg, &recordingEmitter{}, testLogger()), feed, fg
}

func TestOpenThreadLoadsCommentsOldestFirst(t *testing.T) {
	tg := &fakeThreadGateway{comments: []domain.Comment{
		{ID: "c1", Content: "第一条"},
		{ID: "c2", Content: "第二条"},
	}}
	threads, _, _ := newThreadFixture(t, tg)

	post, err := threads.OpenThread(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, post.CommentsList, 2)
	assert.Equal(t, "c1", post.CommentsList[0].ID)
	assert.Equal(t, 2, post.Comments)

	active, ok := threads.Active()
	require.True(t, ok)
	assert.Equal(t, "p1", active.ID)
}

func TestOpenThreadFailureLeavesEmptyThread(t *testing.T) {
	tg := &fakeThreadGateway{listErr: errors.Transport("backend down")}
	threads, _, _ := newThreadFixture(t, tg)

	_, err := threads.OpenThread(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrLoadFailed)

	active, ok := threads.Active()
	require.True(t, ok, "thread stays open for retry")
	assert.Empty(t, active.CommentsList)

	// Retry after the backend recovers.
	tg.listErr = nil
	tg.comments = []domain.Comment{{ID: "c1"}}
	post, err := threads.Retry(context.Background())
	require.NoError(t, err)
	assert.Len(t, post.CommentsList, 1)
}

func TestOpenThreadUnknownPost(t *testing.T) {
	threads, _, _ := newThreadFixture(t, &fakeThreadGateway{})

	_, err := threads.OpenThread(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSendCommentWhitespaceOnlyIsNoOp(t *testing.T) {
	tg := &fakeThreadGateway{
		comments: []domain.Comment{{ID: "c1"}, {ID: "c2"}},
		created:  domain.Comment{ID: "c9"},
	}
	threads, feed, _ := newThreadFixture(t, tg)

	_, err := threads.OpenThread(context.Background(), "p1")
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t "} {
		comment, err := threads.SendComment(context.Background(), text)
		require.NoError(t, err)
		assert.Empty(t, comment.ID)
	}

	active, _ := threads.Active()
	assert.Len(t, active.CommentsList, 2)
	post, err := feed.Post("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, post.Comments, "counter unchanged")
}

func TestSendCommentWithoutActiveThreadIsNoOp(t *testing.T) {
	tg := &fakeThreadGateway{created: domain.Comment{ID: "c9"}}
	threads, _, _ := newThreadFixture(t, tg)

	comment, err := threads.SendComment(context.Background(), "你好")
	require.NoError(t, err)
	assert.Empty(t, comment.ID)
}

func TestSendCommentKeepsCountersInLockstep(t *testing.T) {
	tg := &fakeThreadGateway{
		comments: []domain.Comment{{ID: "c1"}, {ID: "c2"}},
		created:  domain.Comment{ID: "c9", Content: "写得真好"},
	}
	threads, feed, _ := newThreadFixture(t, tg)

	_, err := threads.OpenThread(context.Background(), "p1")
	require.NoError(t, err)

	comment, err := threads.SendComment(context.Background(), "写得真好")
	require.NoError(t, err)
	assert.Equal(t, "c9", comment.ID)

	active, _ := threads.Active()
	feedPost, err := feed.Post("p1")
	require.NoError(t, err)

	assert.Equal(t, active.Comments, feedPost.Comments, "thread and feed counters equal")
	assert.Equal(t, 3, feedPost.Comments)
	require.NotEmpty(t, active.CommentsList)
	assert.Equal(t, "c9", active.CommentsList[0].ID, "newest first in thread view")
	assert.Len(t, active.CommentsList, feedPost.Comments,
		"counter equals loaded list length")
}

func TestSendCommentFailureChangesNothing(t *testing.T) {
	tg := &fakeThreadGateway{
		comments:  []domain.Comment{{ID: "c1"}, {ID: "c2"}},
		createErr: errors.Transport("backend down"),
	}
	threads, feed, _ := newThreadFixture(t, tg)

	_, err := threads.OpenThread(context.Background(), "p1")
	require.NoError(t, err)

	_, err = threads.SendComment(context.Background(), "你好")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)

	active, _ := threads.Active()
	assert.Len(t, active.CommentsList, 2, "no comment inserted")
	post, err := feed.Post("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, post.Comments, "no counter increment")
}

func TestCloseThread(t *testing.T) {
	tg := &fakeThreadGateway{}
	threads, _, _ := newThreadFixture(t, tg)

	_, err := threads.OpenThread(context.Background(), "p1")
	require.NoError(t, err)

	threads.CloseThread()
	_, ok := threads.Active()
	assert.False(t, ok)

	// Idempotent.
	threads.CloseThread()
}
