package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/labsight/internal/application/analysis"
	applabreports "github.com/bryanwahyu/labsight/internal/application/labreports"
	"github.com/bryanwahyu/labsight/internal/application/session"
	"github.com/bryanwahyu/labsight/internal/config"
	"github.com/bryanwahyu/labsight/internal/domain/ai"
	domain "github.com/bryanwahyu/labsight/internal/domain/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/ai/gemini"
	"github.com/bryanwahyu/labsight/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/labsight/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/labsight/internal/infra/db/postgres"
	"github.com/bryanwahyu/labsight/internal/infra/httpserver"
	"github.com/bryanwahyu/labsight/internal/infra/identity/supabase"
	minioStore "github.com/bryanwahyu/labsight/internal/infra/storage"
	"github.com/bryanwahyu/labsight/internal/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

type reportStore interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, reportStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, postgresp.NewLabReportRepository(db, cfg.Database.QueryTimeout), nil
	default:
		db, err := mysqlp.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		return db, mysqlp.NewLabReportRepository(db, cfg.Database.QueryTimeout), nil
	}
}

// newModelClient is called once; the handle is shared by every request.
func newModelClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	switch cfg.AI.Provider {
	case "openai":
		return openai.NewClientWithBaseURL(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL), nil
	default:
		return gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	var docs domain.DocumentStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		docs = store
		checkers["storage"] = store
	}

	idp, err := supabase.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, nil)
	if err != nil {
		return err
	}
	checkers["identity"] = idp

	gate, err := session.NewGate(idp, log.Named("session"))
	if err != nil {
		return err
	}

	modelClient, err := newModelClient(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	engine := analysis.NewEngine(modelClient,
		analysis.WithTimeouts(cfg.AI.DocumentTimeout, cfg.AI.TextTimeout),
		analysis.WithLogger(log.Named("analysis")),
		analysis.WithObserver(metrics),
	)

	opts := []func(*applabreports.Service){
		applabreports.WithLogger(log.Named("labreports")),
		applabreports.WithUploadObserver(metrics),
		applabreports.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		applabreports.WithChatWindow(cfg.AI.ChatWindow),
	}
	if docs != nil {
		opts = append(opts, applabreports.WithDocumentStore(docs))
	}
	svc, err := applabreports.NewService(repo, engine, opts...)
	if err != nil {
		return err
	}

	ready := &middleware.Readiness{}
	handler := httpserver.NewRouter(svc, httpserver.Options{
		Gate:           gate,
		Logger:         log.Named("http"),
		Metrics:        metrics,
		Gatherer:       reg,
		HealthCheckers: checkers,
		Readiness:      ready,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", addr),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("ai_provider", cfg.AI.Provider),
			zap.Bool("archive", docs != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// graceful shutdown
	log.Info("shutting down server...")
	ready.Drain()
	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	return nil
}
