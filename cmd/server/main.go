package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pi-senac-4/studybuddy-web/internal/config"
	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/session"
	"github.com/pi-senac-4/studybuddy-web/internal/store"
	"github.com/pi-senac-4/studybuddy-web/internal/userapi"
	"github.com/pi-senac-4/studybuddy-web/internal/web"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// ── Page sessions ────────────────────────────────────────
	var pages session.Store
	gateTTL := session.InFlightTTLFor(cfg.APITimeout)
	switch cfg.SessionBackend {
	case "redis":
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		pages = session.NewRedisStore(rdb, cfg.SessionTTL, gateTTL)
	case "memory":
		mem := session.NewMemoryStore(cfg.SessionTTL, gateTTL)
		go mem.RunSweeper(ctx, time.Minute)
		pages = mem
	default:
		log.Fatalf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	// ── Diagnostics ──────────────────────────────────────────
	recorders := store.Multi{store.NewLogRecorder(logger)}
	switch cfg.DiagnosticsBackend {
	case "postgres":
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres connect: %v", err)
		}
		defer pgPool.Close()
		pgRecorder := store.NewPostgresRecorder(pgPool)
		if err := pgRecorder.Migrate(ctx); err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		recorders = append(recorders, pgRecorder)
	case "mongo":
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		recorders = append(recorders, store.NewMongoRecorder(mongoClient.Database(cfg.MongoDB)))
	case "log", "":
	default:
		log.Fatalf("unknown DIAGNOSTICS_BACKEND %q", cfg.DiagnosticsBackend)
	}

	// ── User API client ──────────────────────────────────────
	api := userapi.NewClient(cfg.APIURL, userapi.WithTimeout(cfg.APITimeout))

	// ── Router ───────────────────────────────────────────────
	h := web.NewHandler(pages, api, form.Recorder(recorders), logger)
	r := web.NewRouter(h, web.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  anySecure(cfg.AllowedOrigins),
		RequestLog:     true,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.APITimeout + 10*time.Second,
	}

	go func() {
		logger.Info("frontend listening", "port", cfg.Port, "api_url", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

// anySecure reports whether the page is served over https.
func anySecure(origins []string) bool {
	for _, o := range origins {
		if strings.HasPrefix(o, "https://") {
			return true
		}
	}
	return false
}
