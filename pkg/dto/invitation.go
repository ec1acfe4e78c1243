package dto

import (
	"time"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

// InviteMemberRequest leaves role empty for the default member role.
type InviteMemberRequest struct {
	Email string `json:"email" validate:"required"`
	Role  string `json:"role,omitempty"`
}

type InvitationResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	InviterID   uuid.UUID `json:"inviter_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	Resent      bool      `json:"resent,omitempty"`
}

func NewInvitationResponse(inv *models.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          inv.ID,
		WorkspaceID: inv.WorkspaceID,
		InviterID:   inv.InviterID,
		Email:       inv.InviteeEmail,
		Role:        string(inv.Role),
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
	}
}

// InvitationDetailsResponse is what an invitee sees before accepting.
// Token is only set when listing the caller's own pending invitations.
type InvitationDetailsResponse struct {
	InvitationResponse
	Token     string               `json:"token,omitempty"`
	Workspace models.WorkspaceInfo `json:"workspace"`
	Inviter   models.InviterInfo   `json:"inviter"`
}

func NewInvitationDetailsResponse(d *models.InvitationDetails) InvitationDetailsResponse {
	return InvitationDetailsResponse{
		InvitationResponse: NewInvitationResponse(&d.Invitation),
		Workspace:          d.Workspace,
		Inviter:            d.Inviter,
	}
}

// NewPendingInvitationResponse includes the token so the invitee can
// answer from their inbox without the email link.
func NewPendingInvitationResponse(d *models.InvitationDetails) InvitationDetailsResponse {
	resp := NewInvitationDetailsResponse(d)
	resp.Token = d.Invitation.Token
	return resp
}

type AcceptInvitationResponse struct {
	Workspace WorkspaceResponse `json:"workspace"`
	Role      string            `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
