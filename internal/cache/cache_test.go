package cache

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "station.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRoundTripPosts(t *testing.T) {
	c := openTestCache(t)

	posts := []domain.Post{
		{ID: "p1", UserName: "小林", BookTitle: "小王子", Content: "推荐", Likes: 3, Tag: "读书笔记"},
		{ID: "p2", Content: "第二条", Liked: true},
	}
	require.NoError(t, c.SavePosts(posts))

	got, err := c.LoadPosts()
	require.NoError(t, err)
	assert.Equal(t, posts, got)
}

func TestSaveOverwritesPriorSnapshot(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SaveBooks([]domain.Book{{ID: "b1"}, {ID: "b2"}}))
	require.NoError(t, c.SaveBooks([]domain.Book{{ID: "b3", Status: domain.BookTraveling}}))

	got, err := c.LoadBooks()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b3", got[0].ID)
}

func TestLoadMissingSnapshotIsNotFound(t *testing.T) {
	c := openTestCache(t)

	_, err := c.LoadNotifications()
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = c.SavedAt("notifications")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSavedAt(t *testing.T) {
	c := openTestCache(t)

	before := time.Now().Add(-time.Minute)
	require.NoError(t, c.SaveNotifications([]domain.Notification{{ID: "n1", Unread: true}}))

	at, err := c.SavedAt("notifications")
	require.NoError(t, err)
	assert.True(t, at.After(before))

	got, err := c.LoadNotifications()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Unread)
}
