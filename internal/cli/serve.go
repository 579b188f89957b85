package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"linkshort/internal/cache"
	"linkshort/internal/codegen"
	"linkshort/internal/config"
	"linkshort/internal/identity"
	"linkshort/internal/server"
	"linkshort/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and redirect server",
	Long: `serve connects to the database, applies migrations when database.auto_migrate
is set, starts the click recorder and serves HTTP until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireAuth(); err != nil {
			return err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Connect to database
	st, err := openStore(ctx, cfg.Database, logger, cfg.Database.AutoMigrate)
	if err != nil {
		return err
	}
	defer st.close()

	// Redis is optional, continue without it
	var linkCache *service.LinkCache
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			defer redisCache.Close()
			linkCache = service.NewLinkCache(redisCache, cfg.Redis.TTL, logger)
			logger.Info("connected to redis cache")
		}
	}

	jwtService := identity.NewJWTService(identity.Options{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})

	recorder := service.NewClickRecorder(st.links, st.clicks, logger, service.ClickRecorderOptions{
		Workers:      cfg.Clicks.Workers,
		BufferSize:   cfg.Clicks.BufferSize,
		WriteTimeout: cfg.Clicks.WriteTimeout,
	})

	gin.SetMode(gin.ReleaseMode)
	router, err := server.NewRouter(server.Deps{
		Links:          service.NewLinkService(st.links, codegen.NewGenerator(codegen.DefaultLength), linkCache, logger),
		Redirect:       service.NewRedirectService(st.links, linkCache, recorder, logger),
		Verifier:       jwtService,
		DB:             st.pinger,
		Logger:         logger,
		BaseURL:        cfg.Server.BaseURL,
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	if err != nil {
		recorder.Close(context.Background())
		return fmt.Errorf("failed to build router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "base_url", cfg.Server.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			recorder.Close(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	// in-flight redirects are done, drain their clicks
	if err := recorder.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("click recorder: %w", err))
	}

	logger.Info("server stopped")
	return errors.Join(errs...)
}
