package models

import "time"

type Invite struct {
	Code      string    `json:"code"`
	ServerID  int64     `json:"server_id,string"`
	InviterID int64     `json:"inviter_id,string"`
	Uses      int       `json:"uses"`
	MaxUses   int       `json:"max_uses"` // 0 means unlimited
	CreatedAt time.Time `json:"created_at"`
}
