package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	auditfile "github.com/vshulcz/Countra/internal/adapters/audit/file"
	auditpg "github.com/vshulcz/Countra/internal/adapters/audit/postgres"
	remoteaudit "github.com/vshulcz/Countra/internal/adapters/audit/remote"
	"github.com/vshulcz/Countra/internal/adapters/eventpipe"
	runtimeemit "github.com/vshulcz/Countra/internal/adapters/emitter/runtime"
	"github.com/vshulcz/Countra/internal/adapters/http/ginserver"
	"github.com/vshulcz/Countra/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/Countra/internal/adapters/registry/prom"
	"github.com/vshulcz/Countra/internal/config"
	"github.com/vshulcz/Countra/internal/services/audit"
	"github.com/vshulcz/Countra/internal/services/bridge"
)

func run(args []string) error {
	cfg, err := config.LoadBridgeConfig(args, nil)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditSubj, auditReader, closeAudit, err := buildAudit(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAudit()

	hub := eventpipe.NewHub()
	defer hub.Close()

	if err := runtimeemit.New().Register(hub); err != nil {
		return fmt.Errorf("register emitters: %w", err)
	}

	promReg := prometheus.NewRegistry()

	var auditPub audit.Publisher
	if auditSubj != nil {
		auditPub = auditSubj
	}
	b, err := bridge.Start(bridge.Config{
		Bus:      hub,
		Registry: prom.New(promReg),
		Include:  cfg.Accept,
		Settings: cfg.Settings,
		Logger:   logger,
		Audit:    auditPub,
	})
	if err != nil {
		return err
	}
	defer b.Stop()

	gin.SetMode(gin.ReleaseMode)
	h := ginserver.NewHandler(promReg, b, auditReader)
	router := ginserver.NewRouter(h, middlewares.ZapLogger(logger))

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("bridge started",
		zap.String("addr", cfg.Address),
		zap.Strings("enabled_sources", b.Enabled()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildAudit assembles the configured lifecycle journal sinks. The returned
// reader is non-nil only when a queryable store (Postgres) is configured.
func buildAudit(ctx context.Context, cfg config.BridgeConfig, logger *zap.Logger) (*audit.Subject, ginserver.AuditReader, func(), error) {
	var observers []audit.Observer
	var reader ginserver.AuditReader
	closeFn := func() {}

	if cfg.AuditFile != "" {
		observers = append(observers, auditfile.New(cfg.AuditFile))
	}
	if cfg.AuditURL != "" {
		cli, err := remoteaudit.New(cfg.AuditURL, nil)
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("audit url: %w", err)
		}
		observers = append(observers, cli)
	}
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("open database: %w", err)
		}
		if err := auditpg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, closeFn, err
		}
		journal := auditpg.New(db)
		observers = append(observers, journal)
		reader = journal
		closeFn = func() {
			_ = db.Close()
		}
	}

	if len(observers) == 0 {
		return nil, nil, closeFn, nil
	}

	subj := audit.NewSubject(observers...)
	subj.SetErrorHandler(func(err error) {
		logger.Warn("audit sink failure", zap.Error(err))
	})
	return subj, reader, closeFn, nil
}
