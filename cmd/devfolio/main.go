// Package main is the entry point for the DevFolio server. It loads
// configuration, opens the local and remote stores, connects to Valkey and
// object storage, sets up routing, and starts the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"devfolio/internal/cache"
	"devfolio/internal/config"
	"devfolio/internal/handlers"
	"devfolio/internal/identity"
	"devfolio/internal/localstore"
	"devfolio/internal/logging"
	"devfolio/internal/metrics"
	"devfolio/internal/middleware"
	"devfolio/internal/remote"
	"devfolio/internal/render"
	"devfolio/internal/router"
	"devfolio/internal/session"
	"devfolio/internal/storage"
	"devfolio/internal/store"
)

func main() {
	// Load configuration from the environment (and .env, if present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text logs in development, JSON everywhere else.
	logCloser, err := logging.Setup(logging.Options{
		Level: cfg.LogLevel,
		JSON:  !cfg.IsDev(),
		File:  cfg.LogFile,
	})
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"remote", cfg.RemoteDriver,
		"storage", cfg.StorageDriver,
	)

	ctx := context.Background()

	// Local store: every write lands here first.
	local, err := localstore.Open(cfg.LocalDBPath)
	if err != nil {
		slog.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer local.Close()

	// Remote document store, optional. A failed connection degrades to
	// local-only rather than stopping the site.
	remoteStore, err := remote.Open(ctx, remote.Options{
		Driver:         cfg.RemoteDriver,
		PostgresDSN:    cfg.DSN(),
		MongoURI:       cfg.MongoURI,
		MongoDatabase:  cfg.MongoDatabase,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		slog.Warn("remote store unavailable, running local-only", "driver", cfg.RemoteDriver, "error", err)
		remoteStore = nil
	}
	if remoteStore != nil {
		defer remoteStore.Close()
	} else {
		slog.Info("no remote store configured, writes stay local")
	}

	storeOpts := store.Options{Remote: remoteStore, Timeout: cfg.RemoteTimeout}
	stores := handlers.Stores{
		Profile:    store.NewProfileStore(local, storeOpts),
		Skills:     store.NewSkillStore(local, localstore.KeySkills, storeOpts),
		PageSkills: store.NewSkillStore(local, localstore.KeySkillsPage, storeOpts),
		Posts:      store.NewPostStore(local, storeOpts),
		Comments:   store.NewCommentStore(local, storeOpts),
	}

	// Seed development data (no-op if content already exists).
	if cfg.IsDev() {
		if err := store.Seed(ctx, local, stores.Skills, stores.PageSkills, stores.Posts); err != nil {
			slog.Error("failed to seed local store", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	directory := identity.NewDirectory(identity.Account{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		DisplayName:  cfg.AdminDisplayName,
	}, local, cfg.Admin2FA)
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH not set, sign-in disabled")
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize image storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	if uploader == nil {
		slog.Warn("image storage not configured, uploads disabled")
	}
	images := storage.NewImages(uploader)

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(registry)

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}
	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute).TrustProxies(proxies)
	defer loginLimiter.Stop()
	commentLimiter := middleware.NewRateLimiter(10, time.Minute).TrustProxies(proxies)
	defer commentLimiter.Stop()

	r := router.New(sessionStore, router.Handlers{
		Public: handlers.NewPublic(renderer, stores, pageCache),
		Admin:  handlers.NewAdmin(stores, images, pageCache),
		Auth:   handlers.NewAuth(renderer, sessionStore, directory),
	}, router.Limiters{Login: loginLimiter, Comments: commentLimiter}, registry, secureCookies)

	// Uploads of up to 5 MiB need more than the read timeout a plain form gets.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}

// newUploader builds the configured image backend. It returns a nil
// Uploader when storage is switched off or left unconfigured.
func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	switch cfg.StorageDriver {
	case "s3":
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil || s3 == nil {
			return nil, err
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s3, nil
	case "minio":
		mc, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil || mc == nil {
			return nil, err
		}
		slog.Info("minio storage connected", "endpoint", cfg.MinIOEndpoint, "bucket", cfg.MinIOBucket)
		return mc, nil
	}
	return nil, nil
}
