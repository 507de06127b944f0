package models

import "time"

// Ban blocks a user from a server and from accepting its invites.
type Ban struct {
	ServerID  int64     `json:"server_id,string"`
	UserID    int64     `json:"user_id,string"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
