package dto

import (
	"time"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type WorkspaceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Role        string    `json:"role,omitempty"`
	MemberCount int       `json:"member_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewWorkspaceResponse(w *models.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		OwnerID:     w.OwnerID,
		CreatedAt:   w.CreatedAt,
	}
}

func NewWorkspaceSummaryResponse(s *models.WorkspaceSummary) WorkspaceResponse {
	resp := NewWorkspaceResponse(&s.Workspace)
	resp.Role = string(s.Role)
	resp.MemberCount = s.MemberCount
	return resp
}

type MemberResponse struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	Email    string    `json:"email,omitempty"`
	Name     string    `json:"name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewMemberResponse(m *models.WorkspaceMember) MemberResponse {
	resp := MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.CreatedAt,
	}
	if m.User != nil {
		resp.Email = m.User.Email
		resp.Name = m.User.Name
	}
	return resp
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required"`
}
