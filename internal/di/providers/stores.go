package providers

import (
	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/logger"
	"github.com/yuzhenbei/booktravel/internal/store"
)

// ToastCenterHandle wraps the toast center with Shutdownable so pending
// auto-dismiss timers are stopped on exit.
type ToastCenterHandle struct {
	*store.ToastCenter
}

// Shutdown implements do.Shutdownable.
func (h *ToastCenterHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideToastCenter provides the toast center.
func ProvideToastCenter(i do.Injector) (*ToastCenterHandle, error) {
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &ToastCenterHandle{
		ToastCenter: store.NewToastCenter(eventsHandle.Manager, store.ToastDismissAfter, log.Logger),
	}, nil
}

// ProvideFeedStore provides the community feed store.
func ProvideFeedStore(i do.Injector) (*store.FeedStore, error) {
	gw := do.MustInvoke[*GatewayHandle](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	toasts := do.MustInvoke[*ToastCenterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewFeedStore(gw.Client, eventsHandle.Manager, toasts.ToastCenter, log.Logger), nil
}

// ProvideThreadStore provides the comment thread store.
func ProvideThreadStore(i do.Injector) (*store.ThreadStore, error) {
	feed := do.MustInvoke[*store.FeedStore](i)
	gw := do.MustInvoke[*GatewayHandle](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewThreadStore(feed, gw.Client, eventsHandle.Manager, log.Logger), nil
}

// ProvideNotificationCenter provides the notification center.
func ProvideNotificationCenter(i do.Injector) (*store.NotificationCenter, error) {
	gw := do.MustInvoke[*GatewayHandle](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	toasts := do.MustInvoke[*ToastCenterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewNotificationCenter(gw.Client, eventsHandle.Manager, toasts.ToastCenter, log.Logger), nil
}

// ProvideStationStore provides the book station store.
func ProvideStationStore(i do.Injector) (*store.StationStore, error) {
	gw := do.MustInvoke[*GatewayHandle](i)
	notifications := do.MustInvoke[*store.NotificationCenter](i)
	eventsHandle := do.MustInvoke[*EventsManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return store.NewStationStore(gw.Client, notifications, eventsHandle.Manager, log.Logger), nil
}
