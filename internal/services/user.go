package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/google/uuid"
)

var ErrEmailTaken = &apperr.Error{
	Kind: apperr.KindConflict, Code: "email_taken", Message: "an account with this email already exists",
}

// UserService manages the accounts invitations are addressed to.
type UserService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewUserService(store *repository.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

type RegisterInput struct {
	Email string `validate:"required,email"`
	Name  string `validate:"max=100"`
}

var registerInputErrors = map[string]*apperr.Error{
	"Email.required": apperr.ErrEmailRequired,
	"Email.email":    apperr.ErrInvalidEmail,
	"Name.max":       apperr.ErrNameTooLong,
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return nil, firstValidationError(err, registerInputErrors)
	}

	user, err := s.store.Users.Create(ctx, input.Email, input.Name)
	if repository.IsDuplicateOn(err, database.ConstraintUserEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, apperr.Translate(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrUserNotFound)
	}
	return user, nil
}
