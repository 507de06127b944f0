package models

import "time"

type Attachment struct {
	ID          int64     `json:"id,string"`
	ChannelID   int64     `json:"channel_id,string"`
	UploaderID  int64     `json:"uploader_id,string"`
	ObjectKey   string    `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}
