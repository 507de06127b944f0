package models

// UserChannelOverride adjusts one user's permissions within one channel.
// It is applied after every role-derived layer and always wins.
type UserChannelOverride struct {
	ChannelID int64 `json:"channel_id,string"`
	UserID    int64 `json:"user_id,string"`
	Allow     int64 `json:"allow,string"`
	Deny      int64 `json:"deny,string"`
}
