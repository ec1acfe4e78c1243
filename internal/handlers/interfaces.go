package handlers

import (
	"context"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/google/uuid"
)

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	GetInvitationByToken(ctx context.Context, token string) (*models.InvitationDetails, error)
	AcceptInvitation(ctx context.Context, token string, userID uuid.UUID) (*services.AcceptInvitationResult, error)
	DeclineInvitation(ctx context.Context, token string, userID *uuid.UUID) error
	CancelWorkspaceInvitation(ctx context.Context, workspaceID, invitationID, userID uuid.UUID) error
	ListPendingInvitations(ctx context.Context, email string) ([]models.InvitationDetails, error)
	ListWorkspaceInvitations(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.Invitation, error)
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, input services.WorkspaceInput) (*models.Workspace, error)
	Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.WorkspaceSummary, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceSummary, error)
	Update(ctx context.Context, workspaceID, userID uuid.UUID, input services.WorkspaceInput) (*models.Workspace, error)
	Delete(ctx context.Context, workspaceID, userID uuid.UUID) error
	ListMembers(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.WorkspaceMember, error)
	Invite(ctx context.Context, workspaceID, inviterID uuid.UUID, input services.CreateInvitationInput) (*services.CreateInvitationResult, error)
	RemoveMember(ctx context.Context, workspaceID, actorID, memberID uuid.UUID) error
	ChangeMemberRole(ctx context.Context, workspaceID, actorID, memberID uuid.UUID, role models.Role) (*models.WorkspaceMember, error)
}
