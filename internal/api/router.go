package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Servers     *ServerHandler
	Channels    *ChannelHandler
	Members     *MemberHandler
	Roles       *RoleHandler
	Permissions *PermissionHandler
	Bans        *BanHandler
	Invites     *InviteHandler
	Uploads     *UploadHandler
	Gateway     *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Auth routes — no auth middleware, stricter rate limit
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)

	// Public invite info — no auth required
	v1.GET("/invites/:code", deps.Invites.GetInvite)

	// Protected routes — require JWT auth + general rate limit
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Auth (protected)
	protected.POST("/auth/logout", deps.Auth.Logout)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.PATCH("/users/@me", deps.Users.UpdateMe)
	protected.GET("/users/@me/servers", deps.Servers.ListMyServers)

	// Servers
	protected.POST("/servers", deps.Servers.CreateServer)
	protected.GET("/servers/:id", deps.Servers.GetServer)
	protected.PATCH("/servers/:id", deps.Servers.UpdateServer)
	protected.DELETE("/servers/:id", deps.Servers.DeleteServer)

	// Channels
	protected.POST("/servers/:id/channels", deps.Channels.CreateChannel)
	protected.GET("/servers/:id/channels", deps.Channels.ListChannels)
	protected.GET("/channels/:id", deps.Channels.GetChannel)
	protected.PATCH("/channels/:id", deps.Channels.UpdateChannel)
	protected.DELETE("/channels/:id", deps.Channels.DeleteChannel)

	// Members
	protected.GET("/servers/:id/members", deps.Members.ListMembers)
	protected.GET("/servers/:id/members/:user_id", deps.Members.GetMember)
	protected.PATCH("/servers/:id/members/@me", deps.Members.UpdateSelf)
	protected.PATCH("/servers/:id/members/:user_id", deps.Members.UpdateMember)
	protected.DELETE("/servers/:id/members/@me", deps.Members.LeaveServer)
	protected.DELETE("/servers/:id/members/:user_id", deps.Members.KickMember)

	// Roles
	protected.POST("/servers/:id/roles", deps.Roles.CreateRole)
	protected.GET("/servers/:id/roles", deps.Roles.ListRoles)
	protected.PATCH("/servers/:id/roles/:role_id", deps.Roles.UpdateRole)
	protected.DELETE("/servers/:id/roles/:role_id", deps.Roles.DeleteRole)
	protected.PUT("/servers/:id/members/:user_id/roles/:role_id", deps.Roles.AssignRole)
	protected.DELETE("/servers/:id/members/:user_id/roles/:role_id", deps.Roles.UnassignRole)

	// Channel permission overrides + diagnostics
	protected.GET("/channels/:id/permissions/@me", deps.Permissions.GetMyPermissions)
	protected.GET("/channels/:id/permissions/roles", deps.Permissions.ListRoleOverrides)
	protected.PUT("/channels/:id/permissions/roles/:role_id", deps.Permissions.SetRoleOverride)
	protected.DELETE("/channels/:id/permissions/roles/:role_id", deps.Permissions.DeleteRoleOverride)
	protected.GET("/channels/:id/permissions/users", deps.Permissions.ListUserOverrides)
	protected.PUT("/channels/:id/permissions/users/:user_id", deps.Permissions.SetUserOverride)
	protected.DELETE("/channels/:id/permissions/users/:user_id", deps.Permissions.DeleteUserOverride)

	// Bans
	protected.GET("/servers/:id/bans", deps.Bans.ListBans)
	protected.PUT("/servers/:id/bans/:user_id", deps.Bans.BanMember)
	protected.DELETE("/servers/:id/bans/:user_id", deps.Bans.UnbanMember)

	// Files
	protected.POST("/channels/:id/files", deps.Uploads.Upload)
	protected.GET("/channels/:id/files", deps.Uploads.ListAttachments)
	protected.DELETE("/channels/:id/files/:attachment_id", deps.Uploads.DeleteAttachment)

	// Invites (protected)
	protected.POST("/servers/:id/invites", deps.Invites.CreateInvite)
	protected.GET("/servers/:id/invites", deps.Invites.ListInvites)
	protected.POST("/invites/:code", deps.Invites.AcceptInvite)
	protected.DELETE("/invites/:code", deps.Invites.RevokeInvite)
}
