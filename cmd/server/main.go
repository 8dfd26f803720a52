package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"anchorage/internal/admintoken"
	"anchorage/internal/platform/config"
	"anchorage/internal/platform/httpserver"
	"anchorage/internal/platform/kafka/producer"
	"anchorage/internal/platform/logger"
	"anchorage/internal/platform/metrics"
	platformredis "anchorage/internal/platform/redis"
	httptransport "anchorage/internal/transport/http"
	"anchorage/internal/truststore/admin"
	"anchorage/internal/truststore/handler"
	tsmetrics "anchorage/internal/truststore/metrics"
	"anchorage/internal/truststore/ports"
	"anchorage/internal/truststore/service"
	"anchorage/internal/truststore/store/settings"
	audit "anchorage/pkg/platform/audit"
	"anchorage/pkg/platform/audit/publisher"
	kafkasink "anchorage/pkg/platform/audit/publishers/kafka"
	auditmem "anchorage/pkg/platform/audit/store/memory"
	auditpg "anchorage/pkg/platform/audit/store/postgres"
	"anchorage/pkg/platform/audit/worker"
	"anchorage/pkg/platform/circuit"
	adminmw "anchorage/pkg/platform/middleware/admin"
	authmw "anchorage/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("anchorage exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open settings backend: %w", err)
	}
	defer be.close()

	// Audit pipeline. Events are persisted to the audit log and, when Kafka
	// is configured, teed into a forward channel drained by the worker.
	pubOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
	}

	var (
		forward     chan audit.Event
		auditWorker *worker.Worker
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.AuditTopic,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaProducer.Close()

		if err := kafkaProducer.EnsureTopic(ctx, 3, 1); err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}

		sink, err := kafkasink.New(kafkaProducer)
		if err != nil {
			return fmt.Errorf("build kafka audit sink: %w", err)
		}

		forward = make(chan audit.Event, cfg.Audit.BufferSize)
		pubOpts = append(pubOpts, publisher.WithForward(forward))
		auditWorker = worker.NewWorker(sink, forward,
			worker.WithLogger(log),
			worker.WithBreaker(circuit.New("kafka-audit")),
		)
	}

	pub := publisher.NewPublisher(be.auditLog, pubOpts...)

	featureMetrics := tsmetrics.New()

	svc, err := service.New(be.store,
		service.WithLogger(log),
		service.WithMetrics(featureMetrics),
		service.WithAuditPublisher(pub),
	)
	if err != nil {
		return fmt.Errorf("build truststore service: %w", err)
	}

	adminSvc, err := admin.New(be.store, be.writer,
		admin.WithLogger(log),
		admin.WithMetrics(featureMetrics),
		admin.WithAuditPublisher(pub),
		admin.WithAuditLog(be.auditLog),
	)
	if err != nil {
		return fmt.Errorf("build admin service: %w", err)
	}

	adminAuth, err := buildAdminAuth(cfg.Admin, log)
	if err != nil {
		return err
	}

	router, err := httptransport.NewRouter(httptransport.Deps{
		Logger:      log,
		Truststore:  handler.New(svc, adminSvc, log),
		AdminAuth:   adminAuth,
		HTTPMetrics: metrics.NewHTTP(),
		Ready:       be.ready,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting anchorage",
			"addr", cfg.Server.Addr,
			"store_backend", cfg.Store.Backend,
			"admin_auth", cfg.Admin.AuthMode,
			"kafka_forwarding", auditWorker != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if auditWorker != nil {
		// The worker deliberately ignores the signal context: it stops when
		// the forward channel is closed below, after the publisher has
		// flushed, so queued events still reach Kafka during shutdown.
		g.Go(func() error {
			return auditWorker.Run(context.Background())
		})
	}

	<-gctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown incomplete", "error", err)
	}

	_ = pub.Close()
	if forward != nil {
		close(forward)
	}

	return g.Wait()
}

// backend bundles the selected trust-settings store with its audit log,
// readiness probe, and cleanup hook.
type backend struct {
	store    ports.Store
	writer   ports.SettingsWriter
	auditLog audit.Store
	ready    func(ctx context.Context) error
	close    func()
}

// openBackend selects and connects the settings backend. The audit trail is
// persisted alongside the settings when the backend is postgres; the other
// backends keep it in memory.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.Store.Backend {
	case "memory":
		st := settings.NewInMemoryStore()
		return &backend{
			store:    st,
			writer:   st,
			auditLog: auditmem.NewInMemoryStore(),
			close:    func() {},
		}, nil

	case "file":
		if cfg.Store.FilePath == "" {
			return nil, fmt.Errorf("file backend selected but ANCHORAGE_SETTINGS_FILE is empty")
		}
		st, err := settings.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			return nil, fmt.Errorf("load settings file: %w", err)
		}
		return &backend{
			store:    st,
			writer:   st,
			auditLog: auditmem.NewInMemoryStore(),
			close:    func() {},
		}, nil

	case "postgres":
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres backend selected but ANCHORAGE_POSTGRES_DSN is empty")
		}
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}

		st := settings.NewPostgresStore(db)
		return &backend{
			store:    st,
			writer:   st,
			auditLog: auditpg.New(db),
			ready:    db.PingContext,
			close:    func() { _ = db.Close() },
		}, nil

	case "redis":
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		st := settings.NewRedisStore(client.Client)
		return &backend{
			store:    st,
			writer:   st,
			auditLog: auditmem.NewInMemoryStore(),
			ready:    client.Health,
			close:    func() { _ = client.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildAdminAuth selects the middleware guarding the admin API.
func buildAdminAuth(cfg config.AdminConfig, log *slog.Logger) (func(http.Handler) http.Handler, error) {
	switch cfg.AuthMode {
	case "jwt":
		tokens, err := admintoken.New(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
		if err != nil {
			return nil, fmt.Errorf("build admin token service: %w", err)
		}
		return authmw.RequireAuth(admintoken.NewServiceAdapter(tokens), log), nil
	case "token":
		return adminmw.RequireAdminToken(cfg.Token, log), nil
	default:
		return nil, fmt.Errorf("unknown admin auth mode %q", cfg.AuthMode)
	}
}
