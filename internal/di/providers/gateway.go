package providers

import (
	"github.com/samber/do/v2"

	"github.com/yuzhenbei/booktravel/internal/config"
	"github.com/yuzhenbei/booktravel/internal/gateway"
	"github.com/yuzhenbei/booktravel/internal/identity"
	"github.com/yuzhenbei/booktravel/internal/logger"
)

// ProvideIdentity provides the identity provider client holding the
// station's session slot.
func ProvideIdentity(i do.Injector) (*identity.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return identity.New(cfg.Gateway.URL, cfg.Gateway.AnonKey, cfg.Gateway.Timeout, log.Logger), nil
}

// GatewayHandle wraps the remote data gateway client with Shutdownable.
type GatewayHandle struct {
	*gateway.Client
}

// Shutdown implements do.Shutdownable.
func (h *GatewayHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideGateway provides the remote data gateway client. The identity
// client is its token source, so authenticated requests pick up the current
// session automatically.
func ProvideGateway(i do.Injector) (*GatewayHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	idc := do.MustInvoke[*identity.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := gateway.New(cfg.Gateway.URL, cfg.Gateway.AnonKey, idc, cfg.Gateway.Timeout, log.Logger)
	return &GatewayHandle{Client: client}, nil
}
