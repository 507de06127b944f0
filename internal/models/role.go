package models

type Role struct {
	ID       int64  `json:"id,string"`
	ServerID int64  `json:"server_id,string"`
	Name     string `json:"name"`

	// DefaultPermissions is the server-wide mask members of this role get
	// before channel overrides.
	DefaultPermissions int64 `json:"default_permissions,string"`
}
