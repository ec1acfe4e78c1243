package testutil

import (
	"context"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) GetInvitationByToken(ctx context.Context, token string) (*models.InvitationDetails, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvitationDetails), args.Error(1)
}

func (m *MockInvitationService) AcceptInvitation(ctx context.Context, token string, userID uuid.UUID) (*services.AcceptInvitationResult, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AcceptInvitationResult), args.Error(1)
}

func (m *MockInvitationService) DeclineInvitation(ctx context.Context, token string, userID *uuid.UUID) error {
	args := m.Called(ctx, token, userID)
	return args.Error(0)
}

func (m *MockInvitationService) CancelWorkspaceInvitation(ctx context.Context, workspaceID, invitationID, userID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, invitationID, userID)
	return args.Error(0)
}

func (m *MockInvitationService) ListPendingInvitations(ctx context.Context, email string) ([]models.InvitationDetails, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InvitationDetails), args.Error(1)
}

func (m *MockInvitationService) ListWorkspaceInvitations(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.Invitation, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

// MockWorkspaceService mocks the WorkspaceService
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, input services.WorkspaceInput) (*models.Workspace, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.WorkspaceSummary, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkspaceSummary), args.Error(1)
}

func (m *MockWorkspaceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkspaceSummary), args.Error(1)
}

func (m *MockWorkspaceService) Update(ctx context.Context, workspaceID, userID uuid.UUID, input services.WorkspaceInput) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

func (m *MockWorkspaceService) ListMembers(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WorkspaceMember), args.Error(1)
}

func (m *MockWorkspaceService) Invite(ctx context.Context, workspaceID, inviterID uuid.UUID, input services.CreateInvitationInput) (*services.CreateInvitationResult, error) {
	args := m.Called(ctx, workspaceID, inviterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CreateInvitationResult), args.Error(1)
}

func (m *MockWorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorID, memberID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, actorID, memberID)
	return args.Error(0)
}

func (m *MockWorkspaceService) ChangeMemberRole(ctx context.Context, workspaceID, actorID, memberID uuid.UUID, role models.Role) (*models.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, actorID, memberID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkspaceMember), args.Error(1)
}
