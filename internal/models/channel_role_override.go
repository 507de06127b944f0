package models

// ChannelRoleOverride adjusts a role's permissions within one channel.
// Allow and Deny are disjoint masks; bits in neither inherit from the
// role-derived result.
type ChannelRoleOverride struct {
	ChannelID int64 `json:"channel_id,string"`
	RoleID    int64 `json:"role_id,string"`
	Allow     int64 `json:"allow,string"`
	Deny      int64 `json:"deny,string"`
}
