package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/service"
)

// UploadHandler handles channel file endpoints.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Upload handles POST /api/v1/channels/:id/files.
func (h *UploadHandler) Upload(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	userID := auth.GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	defer src.Close()

	attachment, err := h.service.UploadFile(c.Request().Context(), channelID, userID,
		filepath.Base(file.Filename), file.Size, file.Header.Get("Content-Type"), src)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, attachment)
}

// ListAttachments handles GET /api/v1/channels/:id/files.
func (h *UploadHandler) ListAttachments(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	userID := auth.GetUserID(c)

	attachments, err := h.service.ListAttachments(c.Request().Context(), channelID, userID, limit)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, attachments)
}

// DeleteAttachment handles DELETE /api/v1/channels/:id/files/:attachment_id.
func (h *UploadHandler) DeleteAttachment(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel id")
	}

	attachmentID, err := strconv.ParseInt(c.Param("attachment_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid attachment id")
	}

	userID := auth.GetUserID(c)

	if err := h.service.DeleteAttachment(c.Request().Context(), channelID, attachmentID, userID); err != nil {
		return mapServiceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
