// Command server runs the origo loan-origination back office: the staff
// HTTP API, the audit pipeline, and the background outbox relay.
//
// Persistence is selected by configuration. Without DATABASE_URL everything
// runs on in-memory stores, which is the mode integration-free development
// and the unit tests use. REDIS_URL upgrades transition locking from
// per-process mutexes to cross-instance locks, and KAFKA_BROKERS turns on
// the audit event stream (postgres only, since the stream reads the outbox).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"origo/internal/admin"
	applicantstore "origo/internal/applicant/store"
	apphandler "origo/internal/application/handler"
	"origo/internal/application/lock"
	appmetrics "origo/internal/application/metrics"
	applicationsvc "origo/internal/application/service"
	appstore "origo/internal/application/store"
	"origo/internal/audit"
	auditkafka "origo/internal/audit/kafka"
	auditpg "origo/internal/audit/store/postgres"
	auditworker "origo/internal/audit/worker"
	httpapi "origo/internal/http"
	jwttoken "origo/internal/jwt_token"
	"origo/internal/permission"
	"origo/internal/platform/config"
	"origo/internal/platform/httpserver"
	"origo/internal/platform/logger"
	"origo/internal/platform/metrics"
	pgdb "origo/internal/platform/postgres"
	platformredis "origo/internal/platform/redis"
	verhandler "origo/internal/verification/handler"
	vermetrics "origo/internal/verification/metrics"
	verificationsvc "origo/internal/verification/service"
	verstore "origo/internal/verification/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		appStore       applicationsvc.ApplicationStore
		applicantStore applicationsvc.ApplicantStore
		verStore       verificationsvc.Store
		auditStore     audit.Store
		outbox         auditworker.Outbox
		checks         []httpapi.Check
	)

	if cfg.DatabaseURL != "" {
		pool, err := pgdb.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		// The audit store and outbox share one database/sql handle so the
		// event insert and its outbox row commit in the same transaction.
		sqlDB, err := pgdb.OpenSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres audit: %w", err)
		}
		defer sqlDB.Close()

		if err := pgdb.Migrate(sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		appStore = appstore.NewPostgres(pool)
		applicantStore = applicantstore.NewPostgres(pool)
		verStore = verstore.NewPostgres(pool)
		pgAudit := auditpg.New(sqlDB)
		auditStore = pgAudit
		outbox = pgAudit

		checks = append(checks, httpapi.Check{Name: "postgres", Probe: pool.Ping})
		log.Info("postgres stores ready")
	} else {
		appStore = appstore.NewInMemory()
		applicantStore = applicantstore.NewInMemory()
		verStore = verstore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var locker lock.Locker
	rdb, err := platformredis.New(cfg.Redis())
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedis(rdb.Client, lock.WithTTL(cfg.RedisLockTTL))
		checks = append(checks, httpapi.Check{Name: "redis", Probe: rdb.Health})
		log.Info("redis transition locks ready")
	}

	publisher := audit.NewPublisher(auditStore, publisherOptions(cfg)...)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("audit publisher close", "error", err)
		}
	}()
	emitter := audit.NewBestEffort(publisher, log, m.AuditDropped.Inc)

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		if outbox == nil {
			log.Warn("KAFKA_BROKERS set but the audit stream needs postgres, stream disabled")
		} else {
			sink, err := auditkafka.New(ctx, brokers, auditkafka.DefaultTopics(cfg.KafkaTopicPrefix), auditkafka.WithLogger(log))
			if err != nil {
				return fmt.Errorf("connect kafka: %w", err)
			}
			defer sink.Close()

			relay := auditworker.NewRelay(outbox, sink,
				auditworker.WithLogger(log),
				auditworker.WithInterval(cfg.AuditPollInterval),
			)
			go func() {
				if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("audit relay stopped", "error", err)
				}
			}()
			log.Info("audit event stream ready", "brokers", cfg.KafkaBrokers)
		}
	}

	gate := permission.NewRoleGate()

	appOpts := []applicationsvc.Option{
		applicationsvc.WithLogger(log),
		applicationsvc.WithMetrics(appmetrics.New()),
		applicationsvc.WithAuditPublisher(emitter),
		applicationsvc.WithVerificationReader(verStore),
		applicationsvc.WithCounterOfferTransition(cfg.CounterOfferTransitions),
	}
	if locker != nil {
		appOpts = append(appOpts, applicationsvc.WithLocker(locker))
	}
	appSvc := applicationsvc.New(appStore, applicantStore, gate, appOpts...)

	verSvc := verificationsvc.New(verStore, applicantStore, appStore, appSvc, gate,
		verificationsvc.WithLogger(log),
		verificationsvc.WithMetrics(vermetrics.New()),
		verificationsvc.WithAuditPublisher(emitter),
		verificationsvc.WithAuditReader(auditStore),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	validator := jwttoken.NewJWTServiceAdapter(tokens)

	var adminHandler *admin.Handler
	if cfg.AdminToken != "" {
		adminHandler = admin.New(auditStore, tokens, cfg.TokenTTL, log)
	} else {
		log.Warn("ADMIN_TOKEN not set, admin routes disabled")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Metrics:      m,
		Applications: apphandler.New(appSvc, log),
		Verification: verhandler.New(verSvc, log),
		Admin:        adminHandler,
		Validator:    validator,
		AdminToken:   cfg.AdminToken,
		Checks:       checks,
	})

	srv := httpserver.New(cfg.ServerAddr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("origo listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func publisherOptions(cfg config.Config) []audit.PublisherOption {
	if cfg.AuditBufferSize > 0 {
		return []audit.PublisherOption{audit.WithAsyncBuffer(cfg.AuditBufferSize)}
	}
	return nil
}
