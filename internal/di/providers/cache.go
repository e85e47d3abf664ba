package providers

import (
	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/cache"
	"github.com/yuzhenbei/booktravel/internal/config"
	"github.com/yuzhenbei/booktravel/internal/logger"
)

// CacheHandle wraps the snapshot cache with Shutdownable. Cache is nil when
// persistence is disabled.
type CacheHandle struct {
	*cache.Cache
}

// Enabled reports whether snapshot persistence is configured.
func (h *CacheHandle) Enabled() bool {
	return h.Cache != nil
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Close()
}

// ProvideCache provides the warm-start snapshot cache. An empty cache path
// disables persistence; the daemon then runs purely in memory.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Cache.Path == "" {
		log.Info("snapshot cache disabled")
		return &CacheHandle{}, nil
	}

	c, err := cache.Open(cfg.Cache.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("snapshot cache opened", "path", cfg.Cache.Path)
	return &CacheHandle{Cache: c}, nil
}
