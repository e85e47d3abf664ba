package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

func newNotificationCenter(t *testing.T, gw *fakeNotificationGateway) *NotificationCenter {
	t.Helper()
	return NewNotificationCenter(gw, &recordingEmitter{}, nil, testLogger())
}

func TestAddLocalPrependsUnread(t *testing.T) {
	c := newNotificationCenter(t, nil)

	first, err := c.AddLocal(domain.NotificationDraft{
		Kind:    domain.NotificationSystem,
		Title:   "资料更新成功",
		Content: "你的个人主页已焕然一新！",
	})
	require.NoError(t, err)
	assert.True(t, first.Unread)
	assert.Equal(t, domain.TimeJustNow, first.Time)
	assert.NotEmpty(t, first.ID)

	second, err := c.AddLocal(domain.NotificationDraft{
		Kind:    domain.NotificationHandover,
		Title:   "交接任务已启动",
		Content: "请按指引完成最后一步。",
	})
	require.NoError(t, err)

	list := c.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 2, c.UnreadCount())
}

func TestAddLocalRejectsInvalidKind(t *testing.T) {
	c := newNotificationCenter(t, nil)

	_, err := c.AddLocal(domain.NotificationDraft{
		Kind:    "gossip",
		Title:   "?",
		Content: "?",
	})
	require.Error(t, err)
	assert.Empty(t, c.Notifications())
}

func TestMarkReadIsIdempotentAndIgnoresUnknownIDs(t *testing.T) {
	c := newNotificationCenter(t, nil)
	n, err := c.AddLocal(domain.NotificationDraft{
		Kind:    domain.NotificationInteraction,
		Title:   "新的点赞",
		Content: "有人赞了你的动态",
	})
	require.NoError(t, err)

	c.MarkRead(n.ID)
	assert.Equal(t, 0, c.UnreadCount())

	c.MarkRead(n.ID)
	assert.Equal(t, 0, c.UnreadCount())

	c.MarkRead("missing")
	assert.Equal(t, 0, c.UnreadCount())
}

func TestMarkAllReadAlwaysYieldsZeroUnread(t *testing.T) {
	c := newNotificationCenter(t, nil)
	for range 5 {
		_, err := c.AddLocal(domain.NotificationDraft{
			Kind:    domain.NotificationSystem,
			Title:   "t",
			Content: "c",
		})
		require.NoError(t, err)
	}
	require.Equal(t, 5, c.UnreadCount())

	c.MarkAllRead()
	assert.Equal(t, 0, c.UnreadCount())

	// Also from an already-clear state.
	c.MarkAllRead()
	assert.Equal(t, 0, c.UnreadCount())
}

func TestLoadNotificationsReplacesList(t *testing.T) {
	gw := &fakeNotificationGateway{notifications: []domain.Notification{
		{ID: "n1", Unread: true},
		{ID: "n2"},
	}}
	c := newNotificationCenter(t, gw)

	require.NoError(t, c.LoadNotifications(context.Background()))
	assert.Len(t, c.Notifications(), 2)
	assert.Equal(t, 1, c.UnreadCount())
}

func TestLoadNotificationsFailureKeepsPriorState(t *testing.T) {
	gw := &fakeNotificationGateway{}
	c := newNotificationCenter(t, gw)
	_, err := c.AddLocal(domain.NotificationDraft{
		Kind:    domain.NotificationSystem,
		Title:   "t",
		Content: "c",
	})
	require.NoError(t, err)

	gw.listErr = errors.Transport("backend down")
	err = c.LoadNotifications(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrLoadFailed)
	assert.Len(t, c.Notifications(), 1)
}
