package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/models"
)

type attachmentRepo struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepo{pool: pool}
}

func (r *attachmentRepo) Create(ctx context.Context, attachment *models.Attachment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attachments (id, channel_id, uploader_id, object_key, filename, content_type, size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		attachment.ID, attachment.ChannelID, attachment.UploaderID, attachment.ObjectKey,
		attachment.Filename, attachment.ContentType, attachment.Size, attachment.CreatedAt,
	)
	return err
}

func (r *attachmentRepo) GetByChannelID(ctx context.Context, channelID int64, limit int) ([]models.Attachment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, channel_id, uploader_id, object_key, filename, content_type, size, created_at
		 FROM attachments WHERE channel_id = $1
		 ORDER BY id DESC
		 LIMIT $2`, channelID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ChannelID, &a.UploaderID, &a.ObjectKey, &a.Filename, &a.ContentType, &a.Size, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *attachmentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
