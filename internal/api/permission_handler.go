package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/service"
)

// PermissionHandler handles channel override endpoints and effective
// permission diagnostics.
type PermissionHandler struct {
	overrides *service.OverrideService
	checker   *service.PermissionChecker
}

// NewPermissionHandler creates a PermissionHandler.
func NewPermissionHandler(overrides *service.OverrideService, checker *service.PermissionChecker) *PermissionHandler {
	return &PermissionHandler{overrides: overrides, checker: checker}
}

type setOverrideRequest struct {
	Allow int64 `json:"allow,string"`
	Deny  int64 `json:"deny,string"`
}

// SetRoleOverride handles PUT /api/v1/channels/:id/permissions/roles/:role_id.
func (h *PermissionHandler) SetRoleOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	var req setOverrideRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	actorID := auth.GetUserID(c)

	override, err := h.overrides.SetRoleOverride(c.Request().Context(), channelID, roleID, actorID, req.Allow, req.Deny)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, override)
}

// DeleteRoleOverride handles DELETE /api/v1/channels/:id/permissions/roles/:role_id.
func (h *PermissionHandler) DeleteRoleOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid role id")
	}

	actorID := auth.GetUserID(c)

	if err := h.overrides.DeleteRoleOverride(c.Request().Context(), channelID, roleID, actorID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListRoleOverrides handles GET /api/v1/channels/:id/permissions/roles.
func (h *PermissionHandler) ListRoleOverrides(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	actorID := auth.GetUserID(c)

	overrides, err := h.overrides.ListRoleOverrides(c.Request().Context(), channelID, actorID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, overrides)
}

// SetUserOverride handles PUT /api/v1/channels/:id/permissions/users/:user_id.
func (h *PermissionHandler) SetUserOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	var req setOverrideRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	actorID := auth.GetUserID(c)

	override, err := h.overrides.SetUserOverride(c.Request().Context(), channelID, userID, actorID, req.Allow, req.Deny)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, override)
}

// DeleteUserOverride handles DELETE /api/v1/channels/:id/permissions/users/:user_id.
func (h *PermissionHandler) DeleteUserOverride(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}

	actorID := auth.GetUserID(c)

	if err := h.overrides.DeleteUserOverride(c.Request().Context(), channelID, userID, actorID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListUserOverrides handles GET /api/v1/channels/:id/permissions/users.
func (h *PermissionHandler) ListUserOverrides(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	actorID := auth.GetUserID(c)

	overrides, err := h.overrides.ListUserOverrides(c.Request().Context(), channelID, actorID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, overrides)
}

type effectivePermissionsResponse struct {
	ChannelID   int64    `json:"channel_id,string"`
	Permissions int64    `json:"permissions,string"`
	Names       []string `json:"names"`
}

// GetMyPermissions handles GET /api/v1/channels/:id/permissions/@me. It runs
// the same resolution path the write endpoints are gated by, so a "why can't
// I do X here" question is answerable from the client.
func (h *PermissionHandler) GetMyPermissions(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID := auth.GetUserID(c)

	mask, err := h.checker.ResolveChannelPermissions(c.Request().Context(), channelID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	names := []string{}
	if s := mask.String(); s != "NONE" && s != "UNKNOWN" {
		names = strings.Split(s, " | ")
	}

	return c.JSON(http.StatusOK, effectivePermissionsResponse{
		ChannelID:   channelID,
		Permissions: int64(mask),
		Names:       names,
	})
}
