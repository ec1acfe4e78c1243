package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/workspace-invites/internal/config"
	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/handlers"
	"github.com/dimitrije/workspace-invites/internal/logging"
	authmw "github.com/dimitrije/workspace-invites/internal/middleware"
	"github.com/dimitrije/workspace-invites/internal/notify"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Init(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sender, err := notify.NewSender(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("failed to configure email: %w", err)
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Email.SendTimeout, logger)

	store := repository.New(db)
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry)
	invitationService := services.NewInvitationService(store, dispatcher, services.InvitationConfig{
		TTL:    cfg.InvitationTTL,
		AppURL: cfg.AppURL,
	}, logger)
	workspaceService := services.NewWorkspaceService(store, invitationService, logger)

	invitationHandler := handlers.NewInvitationHandler(invitationService, logger)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, logger)
	healthHandler := handlers.NewHealthHandler(db.Pool, logger)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.AppURL},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.Check)
	api.Get("/invitations/:token", invitationHandler.Get)

	optional := api.Group("")
	optional.Use(authmw.OptionalAuth(jwtService))
	optional.Post("/invitations/:token/decline", invitationHandler.Decline)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/invitations/:token/accept", invitationHandler.Accept)
	protected.Get("/users/me/invitations", invitationHandler.ListMine)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)
	protected.Get("/workspaces/:workspaceId", workspaceHandler.Get)
	protected.Patch("/workspaces/:workspaceId", workspaceHandler.Update)
	protected.Delete("/workspaces/:workspaceId", workspaceHandler.Delete)
	protected.Get("/workspaces/:workspaceId/members", workspaceHandler.ListMembers)
	protected.Post("/workspaces/:workspaceId/members", workspaceHandler.InviteMember)
	protected.Patch("/workspaces/:workspaceId/members/:memberId", workspaceHandler.UpdateMemberRole)
	protected.Delete("/workspaces/:workspaceId/members/:memberId", workspaceHandler.RemoveMember)
	protected.Get("/workspaces/:workspaceId/invitations", invitationHandler.ListForWorkspace)
	protected.Delete("/workspaces/:workspaceId/invitations/:invitationId", invitationHandler.Cancel)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "email_provider", cfg.Email.Provider)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down http server", "error", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("pending invitation emails were abandoned", "error", err)
	}
	return nil
}
