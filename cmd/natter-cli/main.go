package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/permissions"
	"github.com/zachbakerdev/open-natter-server/internal/service"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: natter-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 2 users, a server, channels, a role, and overrides.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: natter-cli health")
			fmt.Println()
			fmt.Println("Check if the Natter server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "resolve":
		os.Exit(runResolve(os.Args[2:]))
	case "version":
		fmt.Printf("natter-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: natter-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  seed     Seed demo data (users, server, channels, role, overrides)")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  resolve  Print a user's effective permissions in a channel")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'natter-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	fmt.Println("hashing passwords...")
	aliceHash, err := auth.HashPassword("password123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	bobHash, err := auth.HashPassword("password456")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}

	aliceID := sf.Generate()
	bobID := sf.Generate()
	serverID := sf.Generate()
	generalChanID := sf.Generate()
	voiceChanID := sf.Generate()
	modsRoleID := sf.Generate()

	now := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	fmt.Println("creating users...")
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, display_name, password_hash, created_at) VALUES ($1,$2,$3,$4,$5), ($6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO NOTHING`,
		aliceID.Int64(), "alice", "Alice", aliceHash, now,
		bobID.Int64(), "bob", "Bob", bobHash, now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting users: %v\n", err)
		return 1
	}

	fmt.Println("creating server...")
	_, err = tx.Exec(ctx,
		`INSERT INTO servers (id, name, owner_id, created_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO NOTHING`,
		serverID.Int64(), "Natter HQ", aliceID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting server: %v\n", err)
		return 1
	}

	fmt.Println("creating channels...")
	baseline := int64(permissions.DefaultChannelPerms)
	_, err = tx.Exec(ctx,
		`INSERT INTO channels (id, server_id, name, type, default_permissions)
		 VALUES ($1,$2,$3,'text',$4), ($5,$6,$7,'voice',$8)
		 ON CONFLICT (id) DO NOTHING`,
		generalChanID.Int64(), serverID.Int64(), "general", baseline,
		voiceChanID.Int64(), serverID.Int64(), "Voice Lounge", baseline|int64(permissions.PermVoice),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting channels: %v\n", err)
		return 1
	}

	fmt.Println("creating members...")
	_, err = tx.Exec(ctx,
		`INSERT INTO members (server_id, user_id, joined_at) VALUES ($1,$2,$3), ($4,$5,$6)
		 ON CONFLICT DO NOTHING`,
		serverID.Int64(), aliceID.Int64(), now,
		serverID.Int64(), bobID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting members: %v\n", err)
		return 1
	}

	fmt.Println("creating role and assignment...")
	modPerms := int64(permissions.PermManageChannel | permissions.PermManageMessages | permissions.PermKickMember)
	_, err = tx.Exec(ctx,
		`INSERT INTO roles (id, server_id, name, default_permissions) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO NOTHING`,
		modsRoleID.Int64(), serverID.Int64(), "mods", modPerms,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting role: %v\n", err)
		return 1
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO role_assignments (server_id, user_id, role_id) VALUES ($1,$2,$3)
		 ON CONFLICT DO NOTHING`,
		serverID.Int64(), bobID.Int64(), modsRoleID.Int64(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting role assignment: %v\n", err)
		return 1
	}

	fmt.Println("creating overrides...")
	// The mods role may not upload files in general, and bob personally may
	// not speak in the voice lounge. Both exist to make resolve output
	// interesting out of the box.
	_, err = tx.Exec(ctx,
		`INSERT INTO channel_role_overrides (channel_id, role_id, allow_perms, deny_perms) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (channel_id, role_id) DO UPDATE SET allow_perms = EXCLUDED.allow_perms, deny_perms = EXCLUDED.deny_perms`,
		generalChanID.Int64(), modsRoleID.Int64(), int64(0), int64(permissions.PermAddFiles),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting role override: %v\n", err)
		return 1
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_channel_overrides (channel_id, user_id, allow_perms, deny_perms) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (channel_id, user_id) DO UPDATE SET allow_perms = EXCLUDED.allow_perms, deny_perms = EXCLUDED.deny_perms`,
		voiceChanID.Int64(), bobID.Int64(), int64(0), int64(permissions.PermVoice),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: inserting user override: %v\n", err)
		return 1
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println("seeded:")
	fmt.Printf("  user alice    id=%s password=password123 (owner)\n", aliceID)
	fmt.Printf("  user bob      id=%s password=password456 (mods)\n", bobID)
	fmt.Printf("  server        id=%s\n", serverID)
	fmt.Printf("  #general      id=%s\n", generalChanID)
	fmt.Printf("  Voice Lounge  id=%s\n", voiceChanID)
	fmt.Printf("  role mods     id=%s\n", modsRoleID)
	return 0
}

// --- health ---

func runHealth() int {
	base := envOr("SERVER_URL", "http://localhost:8080")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(base + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: server unreachable: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "error: unhealthy (status %d): %s\n", resp.StatusCode, body)
		return 1
	}

	fmt.Printf("ok: %s\n", body)
	return 0
}

// --- resolve ---

func runResolve(args []string) int {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	channelID := fs.Int64("channel", 0, "channel id (required)")
	userID := fs.Int64("user", 0, "user id (required)")
	fs.Usage = func() {
		fmt.Println("Usage: natter-cli resolve --channel <id> --user <id>")
		fmt.Println()
		fmt.Println("Print the effective permission mask a user holds in a channel,")
		fmt.Println("computed through the same resolution path the server enforces.")
		fmt.Println()
		fmt.Println("Environment:")
		fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *channelID == 0 || *userID == 0 {
		fs.Usage()
		return 1
	}

	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	checker := service.NewPermissionChecker(
		database.NewServerRepository(pool),
		database.NewChannelRepository(pool),
		database.NewMemberRepository(pool),
		database.NewRoleRepository(pool),
		database.NewChannelRoleOverrideRepository(pool),
		database.NewUserChannelOverrideRepository(pool),
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})),
	)

	mask, err := checker.ResolveChannelPermissions(ctx, *channelID, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Printf("channel %d, user %d\n", *channelID, *userID)
	fmt.Printf("  mask: %d (0x%x)\n", int64(mask), int64(mask))
	fmt.Printf("  %s\n", mask)
	return 0
}
