package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/zachbakerdev/open-natter-server/internal/api"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/config"
	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/gateway"
	"github.com/zachbakerdev/open-natter-server/internal/notifier"
	redisclient "github.com/zachbakerdev/open-natter-server/internal/redis"
	"github.com/zachbakerdev/open-natter-server/internal/service"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
	"github.com/zachbakerdev/open-natter-server/internal/storage"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- Infrastructure ---

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		logger.Error("redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	sf, err := snowflake.NewGenerator(1, 1)
	if err != nil {
		logger.Error("snowflake", "error", err)
		os.Exit(1)
	}
	tokenSvc := auth.NewTokenService(cfg.JWTSecret)

	var nf notifier.Notifier = notifier.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kn := notifier.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kn.Close()
		nf = kn
		logger.Info("kafka notifier enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var fileStorage service.FileStorage = disabledStorage{}
	if cfg.MinIOEndpoint != "" {
		mc, err := storage.NewClient(ctx, storage.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
		})
		if err != nil {
			logger.Error("minio", "error", err)
			os.Exit(1)
		}
		fileStorage = mc
	} else {
		logger.Warn("MINIO_ENDPOINT not set, file uploads disabled")
	}

	// --- Repositories ---

	users := database.NewUserRepository(pool)
	servers := database.NewServerRepository(pool)
	channels := database.NewChannelRepository(pool)
	roles := database.NewRoleRepository(pool)
	members := database.NewMemberRepository(pool)
	roleOverrides := database.NewChannelRoleOverrideRepository(pool)
	userOverrides := database.NewUserChannelOverrideRepository(pool)
	invites := database.NewInviteRepository(pool)
	bans := database.NewBanRepository(pool)
	attachments := database.NewAttachmentRepository(pool)

	// --- Authorization gate ---

	checker := service.NewPermissionChecker(servers, channels, members, roles, roleOverrides, userOverrides, logger)

	// --- Gateway ---

	gwManager := gateway.NewManager(tokenSvc, servers, channels, checker, rdb)

	// --- Services ---

	authSvc := service.NewAuthService(users, tokenSvc, rdb, sf)
	userSvc := service.NewUserService(users)
	serverSvc := service.NewServerService(servers, channels, members, sf, gwManager, checker)
	channelSvc := service.NewChannelService(channels, members, sf, gwManager, nf, checker)
	roleSvc := service.NewRoleService(roles, members, sf, gwManager, nf, checker)
	overrideSvc := service.NewOverrideService(channels, roles, members, roleOverrides, userOverrides, gwManager, nf, checker)
	memberSvc := service.NewMemberService(members, servers, gwManager, checker)
	banSvc := service.NewBanService(servers, members, bans, gwManager, checker)
	inviteSvc := service.NewInviteService(invites, servers, members, bans, gwManager, checker)
	uploadSvc := service.NewUploadService(attachments, channels, sf, fileStorage, checker)

	// --- Handlers ---

	deps := &api.Dependencies{
		Auth:         api.NewAuthHandler(authSvc),
		Users:        api.NewUserHandler(userSvc),
		Servers:      api.NewServerHandler(serverSvc),
		Channels:     api.NewChannelHandler(channelSvc),
		Members:      api.NewMemberHandler(memberSvc),
		Roles:        api.NewRoleHandler(roleSvc),
		Permissions:  api.NewPermissionHandler(overrideSvc, checker),
		Bans:         api.NewBanHandler(banSvc),
		Invites:      api.NewInviteHandler(inviteSvc),
		Uploads:      api.NewUploadHandler(uploadSvc),
		Gateway:      gwManager,
		TokenService: tokenSvc,
		Redis:        rdb,
	}

	// --- Echo ---

	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.SetupRouter(e, deps)

	// --- Start ---

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("natter-server starting", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCtx.Done()
	logger.Info("shutting down")
	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// disabledStorage stands in when no object store is configured. Uploads fail
// with a clear error instead of a nil dereference.
type disabledStorage struct{}

var errStorageDisabled = errors.New("file storage is not configured")

func (disabledStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return errStorageDisabled
}

func (disabledStorage) GetURL(key string) string { return "" }

func (disabledStorage) Delete(ctx context.Context, key string) error { return errStorageDisabled }
