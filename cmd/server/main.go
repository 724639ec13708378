// Command server runs the club management API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubdesk/internal/access/handler"
	accessservice "clubdesk/internal/access/service"
	accessstore "clubdesk/internal/access/store"
	"clubdesk/internal/agenda"
	"clubdesk/internal/audit"
	"clubdesk/internal/jwttoken"
	memberhandler "clubdesk/internal/member/handler"
	"clubdesk/internal/member/lockout"
	memberservice "clubdesk/internal/member/service"
	memberstore "clubdesk/internal/member/store"
	"clubdesk/internal/news"
	"clubdesk/internal/platform/config"
	"clubdesk/internal/platform/httpserver"
	"clubdesk/internal/platform/logger"
	"clubdesk/internal/platform/metrics"
	"clubdesk/internal/platform/postgres"
	"clubdesk/internal/platform/redis"
	transport "clubdesk/internal/transport/http"
)

// memberStorage is what the member service needs plus the directory reads
// the access service performs.
type memberStorage interface {
	memberservice.Store
	Count(ctx context.Context) (int, error)
}

// entryStorage adds the purge hook the member service calls on delete.
type entryStorage interface {
	accessservice.Store
	DeleteByMember(ctx context.Context, memberID int64) error
}

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	var (
		members     memberStorage
		entries     entryStorage
		newsStore   news.Store
		agendaStore agenda.Store
		auditStore  audit.Store
		healthCheck func(ctx context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		members = memberstore.NewPostgres(db)
		entries = accessstore.NewPostgres(db)
		newsStore = news.NewPostgresStore(db)
		agendaStore = agenda.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		healthCheck = db.PingContext
		log.Info("using postgres stores")
	} else {
		memoryMembers := memberstore.NewMemory()
		members = memoryMembers
		entries = accessstore.NewMemory(memoryMembers)
		newsStore = news.NewMemoryStore()
		agendaStore = agenda.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var locks memberservice.LockoutStore
	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		locks = lockout.NewRedisStore(rdb.Client, cfg.LockoutWindow)
		log.Info("using redis lockout store")
	} else {
		locks = lockout.NewMemoryStore(cfg.LockoutWindow)
	}

	inbox := make(chan audit.Event, 256)
	publisher := audit.NewPublisher(inbox, log)
	worker := audit.NewWorker(auditStore, inbox, log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		worker.Run(workerCtx)
		close(workerDone)
	}()

	memberSvc := memberservice.New(members, locks, tokens,
		memberservice.Config{
			TokenTTL:         cfg.TokenTTL,
			LockoutThreshold: cfg.LockoutThreshold,
			ResetTokenTTL:    cfg.ResetTokenTTL,
		},
		memberservice.WithLogger(log),
		memberservice.WithMetrics(m),
		memberservice.WithAuditPublisher(publisher),
		memberservice.WithEntryPurger(entries),
	)
	accessSvc := accessservice.New(entries, members, cfg.EntryCooldown,
		accessservice.WithLogger(log),
		accessservice.WithMetrics(m),
		accessservice.WithAuditPublisher(publisher),
	)
	newsSvc := news.NewService(newsStore, log)
	agendaSvc := agenda.NewService(agendaStore, log)

	router := transport.NewRouter(transport.Dependencies{
		Logger:         log,
		Metrics:        m,
		TokenValidator: tokens,
		Members:        memberhandler.New(memberSvc, log),
		Access:         handler.New(accessSvc, log),
		News:           news.NewHandler(newsSvc, log),
		Agenda:         agenda.NewHandler(agendaSvc, log),
		HealthCheck:    healthCheck,
	})

	srv := httpserver.New(cfg.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		stopWorker()
		<-workerDone
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("shutdown failed", "error", err)
	}

	// Server drained, let the audit worker flush its inbox.
	stopWorker()
	<-workerDone
	return nil
}
