package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/workspace-invites/internal/config"
	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/logging"
	"github.com/dimitrije/workspace-invites/internal/notify"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "invitectl",
		Short:         "Operate the workspace invitation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newUserCommand())
	root.AddCommand(newTokenCommand())
	root.AddCommand(newPendingCommand())
	root.AddCommand(newCancelCommand())
	root.AddCommand(newMigrateCommand())
	return root
}

// app is everything a subcommand may need, built from the environment on
// demand so that argument errors never touch the database.
type app struct {
	cfg         *config.Config
	db          *database.DB
	logger      *slog.Logger
	users       *services.UserService
	invitations *services.InvitationService
	jwt         *services.JWTService
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Init(cfg.LogLevel, cfg.IsProduction())

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := repository.New(db)
	// The CLI never creates invitations, so nothing is ever dispatched.
	notifier := notify.NewDispatcher(notify.NewLogSender(logger), cfg.Email.SendTimeout, logger)

	return &app{
		cfg:    cfg,
		db:     db,
		logger: logger,
		users:  services.NewUserService(store, logger),
		invitations: services.NewInvitationService(store, notifier, services.InvitationConfig{
			TTL:    cfg.InvitationTTL,
			AppURL: cfg.AppURL,
		}, logger),
		jwt: services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}
