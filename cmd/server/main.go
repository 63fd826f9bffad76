// Command server runs the attendance verification service: token issuance,
// claim verification, attendance queries, and the admin surface.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rollcall/internal/attendance"
	attendancehandler "rollcall/internal/attendance/handler"
	attendancestore "rollcall/internal/attendance/store"
	"rollcall/internal/audit"
	"rollcall/internal/audit/publisher"
	auditmemory "rollcall/internal/audit/store/memory"
	"rollcall/internal/biometric"
	identityhandler "rollcall/internal/identity/handler"
	identitystore "rollcall/internal/identity/store"
	"rollcall/internal/platform/config"
	"rollcall/internal/platform/httpserver"
	"rollcall/internal/platform/logger"
	platformpostgres "rollcall/internal/platform/postgres"
	platformredis "rollcall/internal/platform/redis"
	"rollcall/internal/session"
	sessionhandler "rollcall/internal/session/handler"
	sessionstore "rollcall/internal/session/store"
	"rollcall/internal/token"
	tokenhandler "rollcall/internal/token/handler"
	tokenmetrics "rollcall/internal/token/metrics"
	httptransport "rollcall/internal/transport/http"
	"rollcall/internal/verify"
	"rollcall/internal/verify/dedup"
	verifyhandler "rollcall/internal/verify/handler"
	verifymetrics "rollcall/internal/verify/metrics"
	id "rollcall/pkg/domain"
	pkgstrings "rollcall/pkg/platform/strings"
)

// recordStore is the union of what the pipeline writes and the attendance
// endpoints read. Both store implementations satisfy it.
type recordStore interface {
	Append(ctx context.Context, rec *attendance.Record) error
	ListByStudent(ctx context.Context, studentID id.UserID) ([]*attendance.Record, error)
	CountVerifiedByStudent(ctx context.Context, studentID id.UserID) (int, error)
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var (
		sessions   session.Store         = sessionstore.NewMemory()
		identities identityhandler.Store = identitystore.NewMemory()
		records    recordStore           = attendancestore.NewMemory()
	)

	var health func(r *http.Request) error

	if cfg.DatabaseURL != "" {
		db, err := platformpostgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := platformpostgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		sessions = sessionstore.NewPostgres(db)
		identities = identitystore.NewPostgres(db)
		records = attendancestore.NewPostgres(db)
		health = func(r *http.Request) error { return db.PingContext(r.Context()) }
		log.Info("using postgres stores")
	} else {
		log.Info("using in-memory stores")
	}

	registry := session.NewRegistry(sessions, log, session.WithDefaultRadius(cfg.DefaultRadiusM))
	issuer := token.NewIssuer(cfg.SigningKey, cfg.TokenFreshness)
	tokenMetrics := tokenmetrics.New()
	rotator := token.NewRotator(issuer, cfg.TokenRotation, log,
		token.WithMetrics(tokenMetrics),
	)

	auditStore := auditmemory.NewInMemoryStore()
	pubStore := audit.ReadStore(auditStore)
	if cfg.KafkaBrokers != "" {
		sink, err := audit.NewKafkaSink(pkgstrings.DedupeAndTrim(strings.Split(cfg.KafkaBrokers, ",")), cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		pubStore = audit.Tee(auditStore, sink)
		log.Info("audit events mirrored to kafka", "topic", cfg.KafkaTopic)
	}
	auditPub := publisher.NewPublisher(pubStore, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	defer auditPub.Close()

	verifyOpts := []verify.Option{
		verify.WithAudit(auditPub),
		verify.WithMetrics(verifymetrics.New()),
		verify.WithLookupTimeout(cfg.LookupTimeout),
	}
	if cfg.DuplicatePolicy == config.DuplicateReject {
		guard, err := duplicateGuard(cfg, log)
		if err != nil {
			return err
		}
		verifyOpts = append(verifyOpts, verify.WithDuplicateGuard(guard))
	}

	verifier := verify.NewService(
		registry,
		identities,
		records,
		issuer,
		biometric.NewMatcher(cfg.FaceThreshold),
		log,
		verifyOpts...,
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Verify: verifyhandler.New(verifier, log),
		Token: tokenhandler.New(registry, rotator, log,
			tokenhandler.WithAudit(auditPub),
			tokenhandler.WithMetrics(tokenMetrics),
		),
		Attendance: attendancehandler.New(records, registry, log),
		Sessions:   sessionhandler.New(registry, log, sessionhandler.WithAudit(auditPub)),
		Identity:   identityhandler.New(identities, log, identityhandler.WithAudit(auditPub)),
		AdminToken: cfg.AdminToken,
		Logger:     log,
		Health:     health,
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting rollcall", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return rotator.Run(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func duplicateGuard(cfg config.Server, log *slog.Logger) (verify.DuplicateGuard, error) {
	if cfg.RedisURL == "" {
		log.Warn("duplicate policy is reject but no redis configured, using in-process guard")
		return dedup.NewMemory(), nil
	}
	client, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return dedup.NewRedis(client, cfg.DedupTTL), nil
}
