package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/service"
)

// BanHandler handles server ban endpoints.
type BanHandler struct {
	service *service.BanService
}

// NewBanHandler creates a BanHandler.
func NewBanHandler(svc *service.BanService) *BanHandler {
	return &BanHandler{service: svc}
}

type banRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// BanMember handles PUT /api/v1/servers/:id/bans/:user_id.
func (h *BanHandler) BanMember(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req banRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	callerID := auth.GetUserID(c)

	if err := h.service.BanMember(c.Request().Context(), serverID, callerID, targetID, req.Reason); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// UnbanMember handles DELETE /api/v1/servers/:id/bans/:user_id.
func (h *BanHandler) UnbanMember(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	callerID := auth.GetUserID(c)

	if err := h.service.UnbanMember(c.Request().Context(), serverID, callerID, targetID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListBans handles GET /api/v1/servers/:id/bans.
func (h *BanHandler) ListBans(c echo.Context) error {
	serverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid server id")
	}

	callerID := auth.GetUserID(c)

	bans, err := h.service.ListBans(c.Request().Context(), serverID, callerID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, bans)
}
