package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/logger"
	"github.com/yuzhenbei/booktravel/internal/store"
)

// Bootstrap seeds the stores from cached snapshots so the view has data
// before the first gateway round trip completes.
type Bootstrap struct {
	// WarmStarted is true when at least one snapshot was restored.
	WarmStarted bool
}

// ProvideBootstrap restores cached snapshots into the stores.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	feed := do.MustInvoke[*store.FeedStore](i)
	notifications := do.MustInvoke[*store.NotificationCenter](i)
	station := do.MustInvoke[*store.StationStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	b := &Bootstrap{}
	if !cacheHandle.Enabled() {
		return b, nil
	}

	if posts, err := cacheHandle.LoadPosts(); err == nil && len(posts) > 0 {
		feed.Seed(posts)
		b.WarmStarted = true
		log.Info("feed warm-started from snapshot", "posts", len(posts))
	}
	if books, err := cacheHandle.LoadBooks(); err == nil && len(books) > 0 {
		station.Seed(books)
		b.WarmStarted = true
		log.Info("station warm-started from snapshot", "books", len(books))
	}
	if list, err := cacheHandle.LoadNotifications(); err == nil && len(list) > 0 {
		notifications.Seed(list)
		b.WarmStarted = true
		log.Info("notifications warm-started from snapshot", "count", len(list))
	}

	return b, nil
}

// RunInitialLoad fetches fresh data from the gateway and, on success,
// refreshes the snapshots. Failures are logged and left retryable; the view
// keeps whatever the warm start restored.
func RunInitialLoad(i do.Injector) {
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	feed := do.MustInvoke[*store.FeedStore](i)
	notifications := do.MustInvoke[*store.NotificationCenter](i)
	station := do.MustInvoke[*store.StationStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()

	if err := feed.LoadPosts(ctx); err != nil {
		log.Warn("initial feed load failed", "error", err)
	} else if cacheHandle.Enabled() {
		if err := cacheHandle.SavePosts(feed.Posts()); err != nil {
			log.Warn("feed snapshot save failed", "error", err)
		}
	}

	if err := station.LoadBooks(ctx); err != nil {
		log.Warn("initial book load failed", "error", err)
	} else if cacheHandle.Enabled() {
		if err := cacheHandle.SaveBooks(station.Books()); err != nil {
			log.Warn("book snapshot save failed", "error", err)
		}
	}

	if err := notifications.LoadNotifications(ctx); err != nil {
		log.Warn("initial notification load failed", "error", err)
	} else if cacheHandle.Enabled() {
		if err := cacheHandle.SaveNotifications(notifications.Notifications()); err != nil {
			log.Warn("notification snapshot save failed", "error", err)
		}
	}
}
