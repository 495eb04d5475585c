package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gridview/internal/apiclient"
	apimetrics "gridview/internal/apiclient/metrics"
	"gridview/internal/identity"
	identitymetrics "gridview/internal/identity/metrics"
	memorystore "gridview/internal/identity/store/memory"
	redisstore "gridview/internal/identity/store/redis"
	"gridview/internal/platform/config"
	"gridview/internal/platform/httpserver"
	"gridview/internal/platform/logger"
	platformredis "gridview/internal/platform/redis"
	"gridview/internal/session"
	"gridview/internal/web"
)

// main wires the dependencies and keeps the server lifecycle small. All
// behavior lives in the internal packages.
func main() {
	if err := run(); err != nil {
		logger.New(os.Stderr).Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable session records live in Redis when one is configured, so a
	// remembered sign-in survives process restarts. Without Redis both
	// persistence modes share the in-process store.
	scoped := memorystore.New(cfg.Session.ScopedTTL)
	var durable identity.RecordStore = memorystore.New(cfg.Session.DurableTTL)

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, durable sessions degrade to in-process", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		durable = redisstore.New(redisClient, cfg.Session.DurableTTL)
		log.Info("durable session records backed by redis")
	}

	var federated []identity.FederatedProvider
	if cfg.Identity.GoogleClientID != "" {
		federated = append(federated, identity.NewGoogleProvider(
			cfg.Identity.GoogleClientID, cfg.Identity.GoogleClientSecret, cfg.Identity.OAuthRedirectURL))
	}
	if cfg.Identity.GithubClientID != "" {
		federated = append(federated, identity.NewGithubProvider(
			cfg.Identity.GithubClientID, cfg.Identity.GithubClientSecret, cfg.Identity.OAuthRedirectURL))
	}

	provider := identity.NewProviderClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)
	auth := identity.NewClient(provider, federated, scoped, durable, log, identitymetrics.New())

	// The session store subscribes before Start so the restore outcome is
	// the first notification it sees.
	sessions := session.New(auth)
	defer sessions.Close()
	go auth.Start(ctx)

	api := apiclient.New(cfg.API.BaseURL, auth, apimetrics.New())

	handler, err := web.NewHandler(auth, sessions, api, log)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.Server.Addr, handler.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gridview", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
