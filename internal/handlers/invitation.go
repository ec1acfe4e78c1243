package handlers

import (
	"log/slog"

	"github.com/dimitrije/workspace-invites/internal/middleware"
	"github.com/dimitrije/workspace-invites/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type InvitationHandler struct {
	invitationService InvitationServiceInterface
	logger            *slog.Logger
}

func NewInvitationHandler(invitationService InvitationServiceInterface, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		logger:            logger,
	}
}

// Get is public: the token itself is the credential.
func (h *InvitationHandler) Get(c *drift.Context) {
	details, err := h.invitationService.GetInvitationByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.NewInvitationDetailsResponse(details))
}

func (h *InvitationHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	result, err := h.invitationService.AcceptInvitation(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.AcceptInvitationResponse{
		Workspace: dto.NewWorkspaceResponse(result.Workspace),
		Role:      string(result.Role),
	})
}

// Decline works with or without a bearer token. When one is present the
// caller's email must match the invitation.
func (h *InvitationHandler) Decline(c *drift.Context) {
	err := h.invitationService.DeclineInvitation(c.Request.Context(), c.Param("token"), middleware.GetOptionalUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "invitation declined"})
}

func (h *InvitationHandler) Cancel(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}
	invitationID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	if err := h.invitationService.CancelWorkspaceInvitation(c.Request.Context(), workspaceID, invitationID, userID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "invitation cancelled"})
}

// ListMine returns pending invitations addressed to the caller's email.
func (h *InvitationHandler) ListMine(c *drift.Context) {
	email := middleware.GetUserEmail(c)
	if email == "" {
		c.Unauthorized("not authenticated")
		return
	}

	list, err := h.invitationService.ListPendingInvitations(c.Request.Context(), email)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response := make([]dto.InvitationDetailsResponse, 0, len(list))
	for i := range list {
		response = append(response, dto.NewPendingInvitationResponse(&list[i]))
	}
	_ = c.JSON(200, response)
}

func (h *InvitationHandler) ListForWorkspace(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	list, err := h.invitationService.ListWorkspaceInvitations(c.Request.Context(), workspaceID, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response := make([]dto.InvitationResponse, 0, len(list))
	for i := range list {
		response = append(response, dto.NewInvitationResponse(&list[i]))
	}
	_ = c.JSON(200, response)
}
