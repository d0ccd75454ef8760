// Package gateway serves the operator console's HTTP API.
package gateway

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/config"
	"github.com/DeBrosOfficial/proxyconsole/pkg/gateway/handlers/logs"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
	"github.com/DeBrosOfficial/proxyconsole/pkg/metrics"
	"github.com/DeBrosOfficial/proxyconsole/pkg/platform"
	"github.com/DeBrosOfficial/proxyconsole/pkg/session"
)

// Dependencies are the services the gateway exposes. Sampler may be nil.
type Dependencies struct {
	Config   *config.Config
	Logger   *logging.ColoredLogger
	Services *platform.Services
	Gate     *session.Gate
	Hub      *logtail.Hub
	Sampler  *metrics.Sampler
}

// Gateway holds the HTTP handlers of the console.
type Gateway struct {
	cfg          *config.Config
	logger       *logging.ColoredLogger
	services     *platform.Services
	gate         *session.Gate
	sampler      *metrics.Sampler
	loginLimiter *RateLimiter
	logs         *logs.Handlers
	startedAt    time.Time
}

// New creates a Gateway.
func New(deps Dependencies) (*Gateway, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("gateway: config is required")
	case deps.Services == nil:
		return nil, errors.New("gateway: services are required")
	case deps.Gate == nil:
		return nil, errors.New("gateway: session gate is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Hub == nil {
		deps.Hub = logtail.NewHub()
	}

	g := &Gateway{
		cfg:          deps.Config,
		logger:       deps.Logger,
		services:     deps.Services,
		gate:         deps.Gate,
		sampler:      deps.Sampler,
		loginLimiter: NewRateLimiter(deps.Config.Auth.LoginPerMin, deps.Config.Auth.LoginBurst),
		logs: logs.NewHandlers(deps.Services.Resolver, deps.Hub, deps.Services.Query,
			deps.Config.Tail.SubscriberBuffer, deps.Logger),
		startedAt: time.Now(),
	}

	g.logger.ComponentInfo(logging.ComponentGateway, "Gateway initialized",
		zap.String("service", deps.Config.Service.Name),
		zap.String("platform", deps.Services.Strategies.GOOS),
		zap.String("elevator", deps.Services.Strategies.Elevator.Name()),
		zap.String("manager", deps.Services.Strategies.Manager.Name()))
	return g, nil
}

// Start runs the gateway's background housekeeping until ctx is cancelled.
func (g *Gateway) Start(ctx context.Context) {
	g.loginLimiter.StartCleanup(ctx, 5*time.Minute, 30*time.Minute)
}
