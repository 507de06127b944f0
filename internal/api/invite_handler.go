package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/service"
)

// InviteHandler handles invite endpoints.
type InviteHandler struct {
	service *service.InviteService
}

// NewInviteHandler creates an InviteHandler.
func NewInviteHandler(svc *service.InviteService) *InviteHandler {
	return &InviteHandler{service: svc}
}

type createInviteRequest struct {
	MaxUses int `json:"max_uses"`
}

// CreateInvite handles POST /api/v1/servers/:id/invites.
func (h *InviteHandler) CreateInvite(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	userID := auth.GetUserID(c)

	invite, err := h.service.CreateInvite(c.Request().Context(), serverID, userID, req.MaxUses)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, invite)
}

// ListInvites handles GET /api/v1/servers/:id/invites.
func (h *InviteHandler) ListInvites(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	userID := auth.GetUserID(c)

	invites, err := h.service.ListInvites(c.Request().Context(), serverID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, invites)
}

// GetInvite handles GET /api/v1/invites/:code. No auth required; shows what
// the invite points at before accepting.
func (h *InviteHandler) GetInvite(c echo.Context) error {
	info, err := h.service.GetInvite(c.Request().Context(), c.Param("code"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, info)
}

// AcceptInvite handles POST /api/v1/invites/:code.
func (h *InviteHandler) AcceptInvite(c echo.Context) error {
	userID := auth.GetUserID(c)

	server, err := h.service.AcceptInvite(c.Request().Context(), c.Param("code"), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, server)
}

// RevokeInvite handles DELETE /api/v1/invites/:code.
func (h *InviteHandler) RevokeInvite(c echo.Context) error {
	userID := auth.GetUserID(c)

	if err := h.service.RevokeInvite(c.Request().Context(), c.Param("code"), userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
