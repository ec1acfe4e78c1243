package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/policy"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/google/uuid"
)

type WorkspaceService struct {
	store       *repository.Store
	invitations *InvitationService
	logger      *slog.Logger
}

func NewWorkspaceService(store *repository.Store, invitations *InvitationService, logger *slog.Logger) *WorkspaceService {
	return &WorkspaceService{store: store, invitations: invitations, logger: logger}
}

type WorkspaceInput struct {
	Name        string  `validate:"required,max=100"`
	Description *string `validate:"omitempty,max=500"`
}

var workspaceInputErrors = map[string]*apperr.Error{
	"Name.required":   apperr.ErrNameRequired,
	"Name.max":        apperr.ErrNameTooLong,
	"Description.max": apperr.ErrDescriptionTooLong,
}

// normalize trims both fields; an empty description is stored as NULL.
func (in WorkspaceInput) normalize() WorkspaceInput {
	in.Name = strings.TrimSpace(in.Name)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	return in
}

func (in WorkspaceInput) validate() (WorkspaceInput, error) {
	in = in.normalize()
	if err := validate.Struct(in); err != nil {
		return in, firstValidationError(err, workspaceInputErrors)
	}
	return in, nil
}

// membership returns userID's membership in workspaceID. Callers without
// one get apperr.NotAuthorized(message).
func (s *WorkspaceService) membership(ctx context.Context, workspaceID, userID uuid.UUID, message string) (*models.WorkspaceMember, error) {
	member, err := s.store.Memberships.Get(ctx, workspaceID, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Translate(err)
	}
	if !policy.IsMember(member) {
		return nil, apperr.NotAuthorized(message)
	}
	return member, nil
}

// Create makes a workspace with ownerID as its sole owner.
func (s *WorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, input WorkspaceInput) (*models.Workspace, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	var workspace *models.Workspace
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		workspace, err = tx.Workspaces.Create(ctx, input.Name, input.Description, ownerID)
		if err != nil {
			return err
		}
		_, err = tx.Memberships.Create(ctx, workspace.ID, ownerID, models.RoleOwner)
		return err
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}

	s.logger.InfoContext(ctx, "workspace created", "workspace_id", workspace.ID, "owner_id", ownerID)
	return workspace, nil
}

func (s *WorkspaceService) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.WorkspaceSummary, error) {
	member, err := s.membership(ctx, workspaceID, userID, "you do not have access to this workspace")
	if err != nil {
		return nil, err
	}

	workspace, err := s.store.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrWorkspaceNotFound)
	}

	count, err := s.store.Memberships.Count(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Translate(err)
	}

	return &models.WorkspaceSummary{Workspace: *workspace, Role: member.Role, MemberCount: count}, nil
}

func (s *WorkspaceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceSummary, error) {
	list, err := s.store.Workspaces.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return list, nil
}

func (s *WorkspaceService) Update(ctx context.Context, workspaceID, userID uuid.UUID, input WorkspaceInput) (*models.Workspace, error) {
	input, err := input.validate()
	if err != nil {
		return nil, err
	}

	member, err := s.membership(ctx, workspaceID, userID, "you do not have permission to update this workspace")
	if err != nil {
		return nil, err
	}
	if !policy.CanManageMembers(member.Role) {
		return nil, apperr.NotAuthorized("you do not have permission to update this workspace")
	}

	workspace, err := s.store.Workspaces.Update(ctx, workspaceID, input.Name, input.Description)
	if err != nil {
		return nil, notFoundAs(err, apperr.ErrWorkspaceNotFound)
	}
	return workspace, nil
}

// Delete removes the workspace and its memberships in one transaction.
// Invitations go with the workspace through the foreign key.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	const denied = "only the workspace owner can delete the workspace"

	member, err := s.membership(ctx, workspaceID, userID, denied)
	if err != nil {
		return err
	}
	if !policy.CanDeleteWorkspace(member.Role) {
		return apperr.NotAuthorized(denied)
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Memberships.DeleteByWorkspace(ctx, workspaceID); err != nil {
			return err
		}
		return tx.Workspaces.Delete(ctx, workspaceID)
	})
	if err != nil {
		return notFoundAs(err, apperr.ErrWorkspaceNotFound)
	}

	s.logger.InfoContext(ctx, "workspace deleted", "workspace_id", workspaceID, "user_id", userID)
	return nil
}

func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.WorkspaceMember, error) {
	if _, err := s.membership(ctx, workspaceID, userID, "you do not have permission to view members of this workspace"); err != nil {
		return nil, err
	}

	members, err := s.store.Memberships.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return members, nil
}

// Invite is CreateInvitation scoped to this workspace.
func (s *WorkspaceService) Invite(ctx context.Context, workspaceID, inviterID uuid.UUID, input CreateInvitationInput) (*CreateInvitationResult, error) {
	return s.invitations.CreateInvitation(ctx, workspaceID, inviterID, input)
}

// RemoveMember deletes memberID's membership. The last owner cannot be
// removed.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorID, memberID uuid.UUID) error {
	const denied = "you do not have permission to remove members from this workspace"

	actor, err := s.membership(ctx, workspaceID, actorID, denied)
	if err != nil {
		return err
	}
	if !policy.CanManageMembers(actor.Role) {
		return apperr.NotAuthorized(denied)
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		target, err := tx.Memberships.Get(ctx, workspaceID, memberID)
		if err != nil {
			return notFoundAs(err, apperr.ErrMemberNotFound)
		}
		if err := keepsAnOwner(ctx, tx, target, ""); err != nil {
			return err
		}
		if err := tx.Memberships.Delete(ctx, workspaceID, memberID); err != nil {
			return notFoundAs(err, apperr.ErrMemberNotFound)
		}
		return nil
	})
	if err != nil {
		return apperr.Translate(err)
	}

	s.logger.InfoContext(ctx, "member removed", "workspace_id", workspaceID, "member_id", memberID, "actor_id", actorID)
	return nil
}

// ChangeMemberRole sets memberID's role. Only owners may change roles and
// the last owner cannot be demoted.
func (s *WorkspaceService) ChangeMemberRole(ctx context.Context, workspaceID, actorID, memberID uuid.UUID, role models.Role) (*models.WorkspaceMember, error) {
	const denied = "only the workspace owner can update member roles"

	role = models.Role(strings.ToLower(strings.TrimSpace(string(role))))
	if !role.Valid() {
		return nil, apperr.ErrInvalidRole
	}

	actor, err := s.membership(ctx, workspaceID, actorID, denied)
	if err != nil {
		return nil, err
	}
	if !policy.CanChangeRoles(actor.Role) {
		return nil, apperr.NotAuthorized(denied)
	}

	var updated *models.WorkspaceMember
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		target, err := tx.Memberships.Get(ctx, workspaceID, memberID)
		if err != nil {
			return notFoundAs(err, apperr.ErrMemberNotFound)
		}
		if err := keepsAnOwner(ctx, tx, target, role); err != nil {
			return err
		}
		updated, err = tx.Memberships.UpdateRole(ctx, workspaceID, memberID, role)
		if err != nil {
			return notFoundAs(err, apperr.ErrMemberNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Translate(err)
	}
	return updated, nil
}

// keepsAnOwner fails when moving target to next ("" for removal) would
// leave the workspace without an owner. The owner rows stay locked until
// tx ends.
func keepsAnOwner(ctx context.Context, tx *repository.Store, target *models.WorkspaceMember, next models.Role) error {
	if target.Role != models.RoleOwner || next == models.RoleOwner {
		return nil
	}
	owners, err := tx.Memberships.LockByRole(ctx, target.WorkspaceID, models.RoleOwner)
	if err != nil {
		return apperr.Translate(err)
	}
	if owners <= 1 {
		return apperr.ErrLastOwner
	}
	return nil
}
