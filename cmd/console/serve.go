package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/DeBrosOfficial/proxyconsole/pkg/credential"
	"github.com/DeBrosOfficial/proxyconsole/pkg/gateway"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logtail"
	"github.com/DeBrosOfficial/proxyconsole/pkg/metrics"
	"github.com/DeBrosOfficial/proxyconsole/pkg/platform"
	"github.com/DeBrosOfficial/proxyconsole/pkg/session"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// runServe runs the HTTP console until SIGINT or SIGTERM.
func runServe(args []string) error {
	flags, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	cfg, err := serveConfig(flags)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.ComponentInfo(logging.ComponentGeneral, "Loaded console configuration",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.String("service", cfg.Service.Name),
		zap.Strings("config_candidates", cfg.Service.ConfigCandidates),
		zap.String("version", buildString()))

	services := platform.NewServices(cfg, platform.Current(cfg), nil, logger)

	cache, err := credential.New(cfg.Auth.CredentialTTL, cfg.Auth.LockTimeout)
	if err != nil {
		return err
	}
	gate := session.NewGate(session.NewStore(cfg.Server.SessionTTL, cfg.Server.SessionIdle), cache, services.Executor, logger)

	monitor := logtail.NewMonitor(logtail.MonitorOptions{
		Categories:   platform.Categories(cfg.Tail.Categories),
		Resolver:     services.Resolver,
		Supervisor:   logtail.NewSupervisor(cfg.Tail.RestartMin, cfg.Tail.RestartMax, logger),
		PollInterval: cfg.Tail.PollInterval,
		Notify:       cfg.Tail.Notify,
		Logger:       logger,
	})

	var sampler *metrics.Sampler
	if cfg.Metrics.Enabled {
		sampler = metrics.NewSampler(metrics.Options{ProcessName: cfg.Metrics.ProcessName, Logger: logger})
		if err := sampler.Start(cfg.Metrics.Schedule); err != nil {
			return err
		}
		defer sampler.Stop()
	}

	gw, err := gateway.New(gateway.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Services: services,
		Gate:     gate,
		Hub:      monitor.Hub(),
		Sampler:  sampler,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()
	gate.StartJanitor(ctx, janitorInterval)
	gw.Start(ctx)

	ln, err := net.Listen("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.ListenAddr, err)
	}
	ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)

	server := &http.Server{
		Handler:           gw.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StdLogger(logging.ComponentGateway),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.ComponentInfo(logging.ComponentGeneral, "Console HTTP server starting",
			zap.String("addr", ln.Addr().String()),
			zap.String("platform", services.Strategies.GOOS),
			zap.Int("max_connections", cfg.Server.MaxConnections))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			logger.ComponentError(logging.ComponentGeneral, "HTTP server error", zap.Error(err))
			cancel()
			wg.Wait()
			return err
		}
	}
	logger.ComponentInfo(logging.ComponentGeneral, "Shutting down console HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ComponentError(logging.ComponentGeneral, "HTTP server shutdown error", zap.Error(err))
	}

	cancel()
	monitor.Hub().Close()
	wg.Wait()
	if n := cache.Purge(); n > 0 {
		logger.ComponentDebug(logging.ComponentAuth, "Cleared cached credentials", zap.Int("count", n))
	}
	logger.ComponentInfo(logging.ComponentGeneral, "Console shutdown complete")
	return nil
}
