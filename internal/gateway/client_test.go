package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, "anon-key", staticTokens("user-token"), 5*time.Second, slog.New(slog.DiscardHandler))
	t.Cleanup(c.Close)
	return c
}

func TestListPostsMapsJoinedRows(t *testing.T) {
	created := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/posts", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"id": "post-1",
			"content": "好书漂流",
			"likes_count": 3,
			"comments_count": 1,
			"created_at": "` + created + `",
			"user": {"username": "小林", "avatar_url": "https://img/a.png", "department": "产品部"},
			"book": {"title": "小王子"}
		}]`))
	})

	posts, err := c.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "post-1", posts[0].ID)
	assert.Equal(t, "小林", posts[0].UserName)
	assert.Equal(t, "https://img/a.png", posts[0].Avatar1)
	assert.Equal(t, "小王子", posts[0].BookTitle)
	assert.Equal(t, 3, posts[0].Likes)
	assert.Equal(t, "2小时前", posts[0].Time)
}

func TestCreatePostReturnsInsertedRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id": "post-9", "content": "推荐一本", "created_at": "` +
			time.Now().UTC().Format(time.RFC3339) + `"}]`))
	})

	post, err := c.CreatePost(context.Background(), domain.PostDraft{
		BookTitle: "活着",
		Content:   "推荐一本",
	})
	require.NoError(t, err)
	assert.Equal(t, "post-9", post.ID)
	assert.Equal(t, domain.TimeJustNow, post.Time)
}

func TestCreateCommentBumpsCounter(t *testing.T) {
	var rpcCalled bool

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/v1/comments":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id": "cmt-1", "post_id": "post-1", "content": "写得真好"}]`))
		case "/rest/v1/rpc/increment_comments_count":
			rpcCalled = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	comment, err := c.CreateComment(context.Background(), "post-1", "写得真好")
	require.NoError(t, err)
	assert.Equal(t, "cmt-1", comment.ID)
	assert.True(t, rpcCalled, "comment counter rpc should be invoked")
}

func TestCreateCommentCounterFailureSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/v1/comments":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id": "cmt-1", "post_id": "post-1", "content": "x"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message": "unknown function"}`))
		}
	})

	_, err := c.CreateComment(context.Background(), "post-1", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, errors.ErrNotAuthenticated},
		{"forbidden", http.StatusForbidden, errors.ErrNotAuthenticated},
		{"not found", http.StatusNotFound, errors.ErrNotFound},
		{"conflict", http.StatusConflict, errors.ErrConflict},
		{"bad request", http.StatusBadRequest, errors.ErrValidation},
		{"server error", http.StatusBadGateway, errors.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError(tt.status, []byte("detail"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.NoError(t, statusError(http.StatusOK, nil))
	assert.NoError(t, statusError(http.StatusNoContent, nil))
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad filter"}`))
	})

	_, err := c.ListBooks(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, 1, calls)
}

func TestAnonymousFallsBackToAnonKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})
	c.tokens = staticTokens("")

	_, err := c.ListNotifications(context.Background())
	require.NoError(t, err)
}

func TestGetBookNotFoundOnEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	_, err := c.GetBook(context.Background(), "book-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUpdateBookStatusRejectsInvalidStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid status")
	})

	err := c.UpdateBookStatus(context.Background(), "book-1", domain.BookStatus("vanished"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestDisplayTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, domain.TimeJustNow},
		{"seconds ago", now.Add(-30 * time.Second), domain.TimeJustNow},
		{"minutes ago", now.Add(-5 * time.Minute), "5分钟前"},
		{"hours ago", now.Add(-3 * time.Hour), "3小时前"},
		{"yesterday", now.Add(-30 * time.Hour), "昨天"},
		{"days ago", now.Add(-3 * 24 * time.Hour), "3天前"},
		{"older", now.Add(-30 * 24 * time.Hour), "2026-02-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayTime(tt.at, now))
		})
	}
}
