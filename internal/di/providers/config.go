// Package providers contains dependency injection providers for the station daemon.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/config"
	"github.com/yuzhenbei/booktravel/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting BookTravel station daemon",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"gateway_url", cfg.Gateway.URL,
	)

	return log, nil
}
