package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// FileStorage abstracts object storage operations for testability.
type FileStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetURL(key string) string
	Delete(ctx context.Context, key string) error
}

// UploadService handles file upload business logic.
type UploadService struct {
	attachments database.AttachmentRepository
	channels    database.ChannelRepository
	snowflake   *snowflake.Generator
	storage     FileStorage
	perms       *PermissionChecker
}

// NewUploadService creates an UploadService.
func NewUploadService(
	attachments database.AttachmentRepository,
	channels database.ChannelRepository,
	sf *snowflake.Generator,
	storage FileStorage,
	perms *PermissionChecker,
) *UploadService {
	return &UploadService{
		attachments: attachments,
		channels:    channels,
		snowflake:   sf,
		storage:     storage,
		perms:       perms,
	}
}

// UploadFile uploads a file to a channel. Requires ADD_FILES on the channel.
func (s *UploadService) UploadFile(ctx context.Context, channelID, userID int64, filename string, size int64, contentType string, reader io.Reader) (*models.Attachment, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, userID, permissions.PermAddFiles, permissions.CheckAll); err != nil {
		return nil, err
	}

	if size > maxUploadSize {
		return nil, BadRequest("FILE_TOO_LARGE", "file must be under 10 MB")
	}

	if !isAllowedContentType(contentType) {
		return nil, BadRequest("INVALID_CONTENT_TYPE", "file type not allowed")
	}

	attachmentID := s.snowflake.Generate().Int64()
	cleanFilename := filepath.Base(filename)
	objectKey := fmt.Sprintf("attachments/%d/%d/%s", channelID, attachmentID, cleanFilename)

	if err := s.storage.Upload(ctx, objectKey, reader, size, contentType); err != nil {
		return nil, NewError(ErrInternal, "UPLOAD_FAILED", "failed to upload file")
	}

	attachment := &models.Attachment{
		ID:          attachmentID,
		ChannelID:   channelID,
		UploaderID:  userID,
		ObjectKey:   objectKey,
		Filename:    cleanFilename,
		ContentType: contentType,
		Size:        size,
		URL:         s.storage.GetURL(objectKey),
		CreatedAt:   time.Now(),
	}

	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	return attachment, nil
}

// ListAttachments returns the most recent attachments in a channel.
// Requires CONNECT on the channel.
func (s *UploadService) ListAttachments(ctx context.Context, channelID, userID int64, limit int) ([]models.Attachment, error) {
	if err := s.perms.RequireChannelPermission(ctx, channelID, userID, permissions.PermConnect, permissions.CheckAll); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	attachments, err := s.attachments.GetByChannelID(ctx, channelID, limit)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return attachments, nil
}

// DeleteAttachment removes an attachment. The uploader may always delete
// their own; otherwise MANAGE_MESSAGES on the channel is required.
func (s *UploadService) DeleteAttachment(ctx context.Context, channelID, attachmentID, userID int64) error {
	attachments, err := s.attachments.GetByChannelID(ctx, channelID, 100)
	if err != nil {
		return Internal("INTERNAL", "internal server error")
	}
	var target *models.Attachment
	for i := range attachments {
		if attachments[i].ID == attachmentID {
			target = &attachments[i]
			break
		}
	}
	if target == nil {
		return NotFound("NOT_FOUND", "attachment not found")
	}

	if target.UploaderID != userID {
		if err := s.perms.RequireChannelPermission(ctx, channelID, userID, permissions.PermManageMessages, permissions.CheckAll); err != nil {
			return err
		}
	}

	if err := s.storage.Delete(ctx, target.ObjectKey); err != nil {
		return NewError(ErrInternal, "DELETE_FAILED", "failed to delete file")
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return Internal("INTERNAL", "internal server error")
	}

	return nil
}

func isAllowedContentType(ct string) bool {
	if allowedContentTypes[ct] {
		return true
	}
	if strings.HasPrefix(ct, "image/") {
		return true
	}
	return false
}
