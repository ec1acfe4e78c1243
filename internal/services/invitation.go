package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/notify"
	"github.com/dimitrije/workspace-invites/internal/policy"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/dimitrije/workspace-invites/internal/token"
	"github.com/google/uuid"
)

const (
	DefaultInvitationTTL = 7 * 24 * time.Hour
	DefaultAppURL        = "http://localhost:5173"

	maxTokenAttempts = 3
)

// Notifier hands an invitation email off for delivery. It must not block.
type Notifier interface {
	Dispatch(msg notify.Invitation)
}

type InvitationConfig struct {
	TTL    time.Duration
	AppURL string
	Clock  Clock
	Tokens token.Generator
}

type InvitationService struct {
	store    *repository.Store
	notifier Notifier
	logger   *slog.Logger

	ttl      time.Duration
	appURL   string
	now      Clock
	newToken token.Generator
}

func NewInvitationService(store *repository.Store, notifier Notifier, cfg InvitationConfig, logger *slog.Logger) *InvitationService {
	s := &InvitationService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		ttl:      cfg.TTL,
		appURL:   strings.TrimRight(cfg.AppURL, "/"),
		now:      cfg.Clock,
		newToken: cfg.Tokens,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultInvitationTTL
	}
	if s.appURL == "" {
		s.appURL = DefaultAppURL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newToken == nil {
		s.newToken = token.Generate
	}
	return s
}

type CreateInvitationInput struct {
	Email string      `validate:"required,email"`
	Role  models.Role `validate:"oneof=owner admin member"`
}

type CreateInvitationResult struct {
	Invitation *models.Invitation
	// Resent is set when an existing pending invitation was re-sent
	// instead of creating a new one.
	Resent bool
}

type AcceptInvitationResult struct {
	Workspace *models.Workspace
	Role      models.Role
}

func (in CreateInvitationInput) normalize() CreateInvitationInput {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = models.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	return in
}

var invitationInputErrors = map[string]*apperr.Error{
	"Email.required": apperr.ErrEmailRequired,
	"Email.email":    apperr.ErrInvalidEmail,
	"Role.oneof":     apperr.ErrInvalidRole,
}

// AcceptURL is the link mailed to the invitee.
func (s *InvitationService) AcceptURL(tok string) string {
	return fmt.Sprintf("%s/invitations/accept?token=%s", s.appURL, url.QueryEscape(tok))
}

// CreateInvitation invites email into the workspace. When a pending
// invitation for the same address already exists the email is sent again
// with the existing token and no new record is written.
func (s *InvitationService) CreateInvitation(ctx context.Context, workspaceID, inviterID uuid.UUID, input CreateInvitationInput) (*CreateInvitationResult, error) {
	input = input.normalize()
	if err := validate.Struct(input); err != nil {
		return nil, firstValidationError(err, invitationInputErrors)
	}

	member, err := s.store.Memberships.Get(ctx, workspaceID, inviterID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Translate(err)
	}
	if !policy.CanGrantRole(policy.RoleOf(member), input.Role) {
		return nil, apperr.NotAuthorized("you do not have permission to invite members to this workspace")
	}

	workspace, err := s.store.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrWorkspaceNotFound)
	}

	invitee, err := s.store.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrUserNotFound)
	}

	_, err = s.store.Memberships.Get(ctx, workspaceID, invitee.ID)
	if err == nil {
		return nil, apperr.ErrAlreadyMember
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Translate(err)
	}

	existing, err := s.findLivePending(ctx, workspaceID, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.notify(ctx, workspace, inviterID, existing)
		return &CreateInvitationResult{Invitation: existing, Resent: true}, nil
	}

	invitation, err := s.insert(ctx, workspaceID, inviterID, input)
	var pending *models.Invitation
	switch {
	case err == nil:
	case repository.IsDuplicateOn(err, database.ConstraintPendingInvitation):
		// A concurrent request created the pending invitation first.
		pending, err = s.store.Invitations.FindPending(ctx, workspaceID, input.Email)
		if err != nil {
			return nil, apperr.Translate(err)
		}
		s.notify(ctx, workspace, inviterID, pending)
		return &CreateInvitationResult{Invitation: pending, Resent: true}, nil
	default:
		return nil, apperr.Translate(err)
	}

	s.logger.InfoContext(ctx, "invitation created",
		"invitation_id", invitation.ID, "workspace_id", workspaceID, "role", invitation.Role)

	s.notify(ctx, workspace, inviterID, invitation)
	return &CreateInvitationResult{Invitation: invitation}, nil
}

// findLivePending returns the pending invitation for (workspace, email), or
// nil. A pending invitation that is already past its deadline is expired
// so that a fresh one can take its place.
func (s *InvitationService) findLivePending(ctx context.Context, workspaceID uuid.UUID, email string) (*models.Invitation, error) {
	existing, err := s.store.Invitations.FindPending(ctx, workspaceID, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if !existing.IsExpired(s.now()) {
		return existing, nil
	}
	if _, err := s.expire(ctx, s.store, existing); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *InvitationService) insert(ctx context.Context, workspaceID, inviterID uuid.UUID, input CreateInvitationInput) (*models.Invitation, error) {
	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		tok, err := s.newToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invitation token: %w", err)
		}
		invitation, err := s.store.Invitations.Create(ctx, repository.NewInvitation{
			WorkspaceID:  workspaceID,
			InviterID:    inviterID,
			InviteeEmail: input.Email,
			Role:         input.Role,
			Token:        tok,
			ExpiresAt:    s.now().Add(s.ttl),
		})
		if repository.IsDuplicateOn(err, database.ConstraintInvitationToken) {
			lastErr = err
			continue
		}
		return invitation, err
	}
	return nil, lastErr
}

// notify dispatches the invitation email. Failing to look up the inviter
// only costs the email, never the operation.
func (s *InvitationService) notify(ctx context.Context, workspace *models.Workspace, inviterID uuid.UUID, invitation *models.Invitation) {
	inviter, err := s.store.Users.GetByID(ctx, inviterID)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping invitation email: inviter lookup failed",
			"invitation_id", invitation.ID, "inviter_id", inviterID, "error", err)
		return
	}
	s.notifier.Dispatch(notify.Invitation{
		To:            invitation.InviteeEmail,
		WorkspaceName: workspace.Name,
		InviterName:   inviter.DisplayName(),
		AcceptURL:     s.AcceptURL(invitation.Token),
	})
}

// expire moves a pending invitation to expired. A row some other request
// already resolved is left alone; the returned status is what the row
// holds afterwards.
func (s *InvitationService) expire(ctx context.Context, store *repository.Store, invitation *models.Invitation) (models.InvitationStatus, error) {
	ok, err := store.Invitations.Transition(ctx, invitation.ID, models.InvitationStatusPending, models.InvitationStatusExpired)
	if err != nil {
		return "", apperr.Translate(err)
	}
	if ok {
		s.logger.InfoContext(ctx, "invitation expired", "invitation_id", invitation.ID)
		return models.InvitationStatusExpired, nil
	}
	current, err := store.Invitations.GetByID(ctx, invitation.ID)
	if err != nil {
		return "", apperr.Translate(err)
	}
	return current.Status, nil
}

// resolvable checks that invitation can still be acted on at now, lazily
// expiring it first when its deadline has passed.
func (s *InvitationService) resolvable(ctx context.Context, store *repository.Store, invitation *models.Invitation) error {
	status := invitation.Status
	if status == models.InvitationStatusPending && invitation.IsExpired(s.now()) {
		var err error
		if status, err = s.expire(ctx, store, invitation); err != nil {
			return err
		}
	}
	switch status {
	case models.InvitationStatusPending:
		return nil
	case models.InvitationStatusExpired:
		return apperr.ErrInvitationExpired
	default:
		return apperr.AlreadyResolved(string(status))
	}
}

// GetInvitationByToken returns a pending invitation with its workspace and
// inviter, the view an invitee sees before answering.
func (s *InvitationService) GetInvitationByToken(ctx context.Context, tok string) (*models.InvitationDetails, error) {
	if tok == "" {
		return nil, apperr.ErrTokenRequired
	}

	details, err := s.store.Invitations.GetDetailsByToken(ctx, tok)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrInvitationNotFound)
	}

	if err := s.resolvable(ctx, s.store, &details.Invitation); err != nil {
		return nil, err
	}
	return details, nil
}

// AcceptInvitation makes userID a member of the invitation's workspace.
// Membership creation and the accepted status commit together or not at
// all; the invitation row stays locked for the whole transaction.
func (s *InvitationService) AcceptInvitation(ctx context.Context, tok string, userID uuid.UUID) (*AcceptInvitationResult, error) {
	if tok == "" {
		return nil, apperr.ErrTokenRequired
	}
	if userID == uuid.Nil {
		return nil, apperr.ErrNotAuthenticated
	}

	var result *AcceptInvitationResult
	// outcome carries business failures out of a transaction that still
	// commits, so lazy expiry and the already-member resolution persist.
	var outcome error

	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		invitation, err := tx.Invitations.LockByToken(ctx, tok)
		if err != nil {
			return notFoundAs(err, apperr.ErrInvitationNotFound)
		}

		if outcome = s.resolvable(ctx, tx, invitation); outcome != nil {
			return passUpstream(outcome)
		}

		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, apperr.ErrUserNotFound)
		}
		if !strings.EqualFold(user.Email, invitation.InviteeEmail) {
			outcome = apperr.ErrEmailMismatch
			return nil
		}

		workspace, err := tx.Workspaces.GetByID(ctx, invitation.WorkspaceID)
		if err != nil {
			return notFoundAs(err, apperr.ErrWorkspaceNotFound)
		}

		_, err = tx.Memberships.Get(ctx, invitation.WorkspaceID, userID)
		switch {
		case err == nil:
			if _, err := tx.Invitations.Transition(ctx, invitation.ID, models.InvitationStatusPending, models.InvitationStatusAccepted); err != nil {
				return apperr.Translate(err)
			}
			outcome = apperr.ErrAlreadyMember
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return apperr.Translate(err)
		}

		if _, err := tx.Memberships.Create(ctx, invitation.WorkspaceID, userID, invitation.Role); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.ErrAlreadyMember
			}
			return apperr.Translate(err)
		}

		ok, err := tx.Invitations.Transition(ctx, invitation.ID, models.InvitationStatusPending, models.InvitationStatusAccepted)
		if err != nil {
			return apperr.Translate(err)
		}
		if !ok {
			return apperr.ErrAlreadyResolved
		}

		result = &AcceptInvitationResult{Workspace: workspace, Role: invitation.Role}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	if outcome != nil {
		return nil, outcome
	}

	s.logger.InfoContext(ctx, "invitation accepted",
		"workspace_id", result.Workspace.ID, "user_id", userID, "role", result.Role)
	return result, nil
}

// passUpstream lets storage failures found while checking an invitation
// abort the transaction; business failures commit.
func passUpstream(err error) error {
	if apperr.KindOf(err) == apperr.KindUpstream {
		return err
	}
	return nil
}

// DeclineInvitation marks the invitation declined. userID may be nil: the
// token alone is enough to decline. When userID names an existing account,
// its email must match the invitation; an unknown actor declines as if
// anonymous.
func (s *InvitationService) DeclineInvitation(ctx context.Context, tok string, userID *uuid.UUID) error {
	if tok == "" {
		return apperr.ErrTokenRequired
	}

	var outcome error
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		invitation, err := tx.Invitations.LockByToken(ctx, tok)
		if err != nil {
			return notFoundAs(err, apperr.ErrInvitationNotFound)
		}

		if outcome = s.resolvable(ctx, tx, invitation); outcome != nil {
			return passUpstream(outcome)
		}

		if userID != nil {
			user, err := tx.Users.GetByID(ctx, *userID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return apperr.Translate(err)
			}
			if user != nil && !strings.EqualFold(user.Email, invitation.InviteeEmail) {
				outcome = apperr.ErrEmailMismatch
				return nil
			}
		}

		ok, err := tx.Invitations.Transition(ctx, invitation.ID, models.InvitationStatusPending, models.InvitationStatusDeclined)
		if err != nil {
			return apperr.Translate(err)
		}
		if !ok {
			return apperr.ErrAlreadyResolved
		}
		return nil
	})
	if err != nil {
		return apperr.Translate(err)
	}
	return outcome
}

// CancelInvitation withdraws a pending invitation. Only owners and admins
// of the invitation's workspace may cancel.
func (s *InvitationService) CancelInvitation(ctx context.Context, invitationID, userID uuid.UUID) error {
	return s.cancel(ctx, uuid.Nil, invitationID, userID)
}

// CancelWorkspaceInvitation is CancelInvitation addressed through a
// workspace. An invitation that belongs to another workspace is reported
// as not found.
func (s *InvitationService) CancelWorkspaceInvitation(ctx context.Context, workspaceID, invitationID, userID uuid.UUID) error {
	if workspaceID == uuid.Nil {
		return apperr.ErrInvitationNotFound
	}
	return s.cancel(ctx, workspaceID, invitationID, userID)
}

// cancel checks the invitation against workspaceID unless it is uuid.Nil.
func (s *InvitationService) cancel(ctx context.Context, workspaceID, invitationID, userID uuid.UUID) error {
	if invitationID == uuid.Nil {
		return apperr.ErrInvalidInvitation
	}

	invitation, err := s.store.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return notFoundAs(err, apperr.ErrInvitationNotFound)
	}
	if workspaceID != uuid.Nil && invitation.WorkspaceID != workspaceID {
		return apperr.ErrInvitationNotFound
	}

	if err := s.requireManager(ctx, invitation.WorkspaceID, userID, "you do not have permission to cancel this invitation"); err != nil {
		return err
	}

	if err := s.resolvable(ctx, s.store, invitation); err != nil {
		if errors.Is(err, apperr.ErrInvitationExpired) {
			return apperr.AlreadyResolved(string(models.InvitationStatusExpired))
		}
		return err
	}

	ok, err := s.store.Invitations.Transition(ctx, invitation.ID, models.InvitationStatusPending, models.InvitationStatusCancelled)
	if err != nil {
		return apperr.Translate(err)
	}
	if !ok {
		return apperr.ErrAlreadyResolved
	}

	s.logger.InfoContext(ctx, "invitation cancelled",
		"invitation_id", invitation.ID, "workspace_id", invitation.WorkspaceID, "user_id", userID)
	return nil
}

// ListPendingInvitations returns the unexpired pending invitations
// addressed to email.
func (s *InvitationService) ListPendingInvitations(ctx context.Context, email string) ([]models.InvitationDetails, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.ErrEmailRequired
	}

	list, err := s.store.Invitations.ListPendingByEmail(ctx, email, s.now())
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return list, nil
}

// ListWorkspaceInvitations returns every invitation of a workspace in any
// status. Pending invitations past their deadline are expired on the way.
func (s *InvitationService) ListWorkspaceInvitations(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.Invitation, error) {
	if err := s.requireManager(ctx, workspaceID, userID, "you do not have permission to view invitations for this workspace"); err != nil {
		return nil, err
	}

	list, err := s.store.Invitations.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	now := s.now()
	for i := range list {
		if list[i].Status != models.InvitationStatusPending || !list[i].IsExpired(now) {
			continue
		}
		status, err := s.expire(ctx, s.store, &list[i])
		if err != nil {
			return nil, err
		}
		list[i].Status = status
	}
	return list, nil
}

func (s *InvitationService) requireManager(ctx context.Context, workspaceID, userID uuid.UUID, message string) error {
	member, err := s.store.Memberships.Get(ctx, workspaceID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Translate(err)
	}
	if !policy.CanManageMembers(policy.RoleOf(member)) {
		return apperr.NotAuthorized(message)
	}
	return nil
}
