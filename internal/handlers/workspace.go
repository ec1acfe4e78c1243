package handlers

import (
	"log/slog"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/internal/middleware"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/dimitrije/workspace-invites/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type WorkspaceHandler struct {
	workspaceService WorkspaceServiceInterface
	logger           *slog.Logger
}

func NewWorkspaceHandler(workspaceService WorkspaceServiceInterface, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// workspaceRequest resolves the caller and the :workspaceId param, writing
// the error response itself when either is missing.
func workspaceRequest(c *drift.Context) (userID, workspaceID uuid.UUID, ok bool) {
	userID = middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, workspaceID, true
}

func memberParam(c *drift.Context) (uuid.UUID, bool) {
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return uuid.Nil, false
	}
	return memberID, true
}

func (h *WorkspaceHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), userID, services.WorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := dto.NewWorkspaceResponse(workspace)
	resp.Role = string(models.RoleOwner)
	resp.MemberCount = 1
	_ = c.JSON(201, resp)
}

func (h *WorkspaceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	list, err := h.workspaceService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response := make([]dto.WorkspaceResponse, 0, len(list))
	for i := range list {
		response = append(response, dto.NewWorkspaceSummaryResponse(&list[i]))
	}
	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) Get(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}

	summary, err := h.workspaceService.Get(c.Request.Context(), workspaceID, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.NewWorkspaceSummaryResponse(summary))
}

func (h *WorkspaceHandler) Update(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), workspaceID, userID, services.WorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.NewWorkspaceResponse(workspace))
}

func (h *WorkspaceHandler) Delete(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), workspaceID, userID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "workspace deleted"})
}

func (h *WorkspaceHandler) ListMembers(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(c.Request.Context(), workspaceID, userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	response := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		response = append(response, dto.NewMemberResponse(&members[i]))
	}
	_ = c.JSON(200, response)
}

// InviteMember answers 201 for a new invitation and 200 when a pending one
// was re-sent.
func (h *WorkspaceHandler) InviteMember(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}

	var req dto.InviteMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(c, h.logger, apperr.ErrEmailRequired)
		return
	}

	result, err := h.workspaceService.Invite(c.Request.Context(), workspaceID, userID, services.CreateInvitationInput{
		Email: req.Email,
		Role:  models.Role(req.Role),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := dto.NewInvitationResponse(result.Invitation)
	resp.Resent = result.Resent
	status := 201
	if result.Resent {
		status = 200
	}
	_ = c.JSON(status, resp)
}

func (h *WorkspaceHandler) RemoveMember(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	if err := h.workspaceService.RemoveMember(c.Request.Context(), workspaceID, userID, memberID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "member removed"})
}

func (h *WorkspaceHandler) UpdateMemberRole(c *drift.Context) {
	userID, workspaceID, ok := workspaceRequest(c)
	if !ok {
		return
	}
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(c, h.logger, apperr.ErrInvalidRole)
		return
	}

	member, err := h.workspaceService.ChangeMemberRole(c.Request.Context(), workspaceID, userID, memberID, models.Role(req.Role))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	_ = c.JSON(200, dto.NewMemberResponse(member))
}
