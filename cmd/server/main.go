/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the workforce records server. Handles
	configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load .env (if present) and read configuration
 2. Initialize SQLite store and blob directory
 3. Optionally bootstrap the first superuser account
 4. Configure the HTTP router
 5. Start server with graceful shutdown

CONFIGURATION (environment, flags override):

	PORT            HTTP server port (default: 8080)
	DB_PATH         SQLite database path (default: workforce.db)
	                Use ":memory:" for an in-memory database
	BLOB_DIR        Directory for uploaded documents (default: ./blobs)
	JWT_SECRET      Token signing secret (required outside dev)
	TOKEN_TTL       Token lifetime, Go duration (default: 24h)
	CORS_ORIGINS    Comma-separated allowed origins
	LOG_LEVEL       zerolog level (default: info)
	ADMIN_USERNAME  When set with ADMIN_PASSWORD, creates an initial
	ADMIN_PASSWORD  superuser account if no accounts exist yet

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Close database connection
	4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/warp/workforce/accounts"
	"github.com/warp/workforce/api"
	"github.com/warp/workforce/store/blob"
	"github.com/warp/workforce/store/sqlite"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "workforce.db"), "SQLite database path")
	blobDir := flag.String("blobs", envStr("BLOB_DIR", "./blobs"), "directory for uploaded documents")
	flag.Parse()

	log := newLogger(envStr("LOG_LEVEL", "info"))

	secret := envStr("JWT_SECRET", "")
	if secret == "" {
		secret = "dev-only-secret"
		log.Warn().Msg("JWT_SECRET not set, using insecure development secret")
	}
	ttl, err := time.ParseDuration(envStr("TOKEN_TTL", "24h"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TOKEN_TTL")
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	blobs, err := blob.NewLocalStore(*blobDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob directory")
	}

	accountSvc := accounts.NewAdminService(store, accounts.BcryptHasher{}, log)
	if err := bootstrapAdmin(context.Background(), store, log); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	tokens := api.NewTokenIssuer(secret, ttl)
	handler := api.NewHandler(store, accountSvc, blobs, tokens, log)

	origins := strings.Split(envStr("CORS_ORIGINS", "http://localhost:5173"), ",")
	router := api.NewRouter(handler, origins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Str("db", *dbPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// bootstrapAdmin creates the initial superuser from the environment when
// the accounts table is still empty. Without it a fresh install has no
// way to log in.
func bootstrapAdmin(ctx context.Context, store *sqlite.Store, log zerolog.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	existing, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := accounts.BcryptHasher{}.Hash(password)
	if err != nil {
		return err
	}
	admin := &accounts.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Active:       true,
		Staff:        true,
		Superuser:    true,
		DateJoined:   time.Now().UTC(),
	}
	if err := store.SaveAccount(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("bootstrapped initial superuser")
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
