package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fruverhq/fruver-pos/config"
	"github.com/fruverhq/fruver-pos/internal/audit"
	audithandler "github.com/fruverhq/fruver-pos/internal/audit/handler"
	auditrepo "github.com/fruverhq/fruver-pos/internal/audit/repository"
	"github.com/fruverhq/fruver-pos/internal/auth"
	authhandler "github.com/fruverhq/fruver-pos/internal/auth/handler"
	"github.com/fruverhq/fruver-pos/internal/cache"
	inventoryrepo "github.com/fruverhq/fruver-pos/internal/inventory/repository"
	inventoryusecase "github.com/fruverhq/fruver-pos/internal/inventory/usecase"
	"github.com/fruverhq/fruver-pos/internal/logger"
	producthandler "github.com/fruverhq/fruver-pos/internal/product/handler"
	productrepo "github.com/fruverhq/fruver-pos/internal/product/repository"
	productusecase "github.com/fruverhq/fruver-pos/internal/product/usecase"
	"github.com/fruverhq/fruver-pos/internal/sale"
	salehandler "github.com/fruverhq/fruver-pos/internal/sale/handler"
	salerepo "github.com/fruverhq/fruver-pos/internal/sale/repository"
	saleusecase "github.com/fruverhq/fruver-pos/internal/sale/usecase"
	"github.com/fruverhq/fruver-pos/internal/server"
	tillhandler "github.com/fruverhq/fruver-pos/internal/till/handler"
	tillrepo "github.com/fruverhq/fruver-pos/internal/till/repository"
	tillusecase "github.com/fruverhq/fruver-pos/internal/till/usecase"
	userhandler "github.com/fruverhq/fruver-pos/internal/user/handler"
	userrepo "github.com/fruverhq/fruver-pos/internal/user/repository"
	userusecase "github.com/fruverhq/fruver-pos/internal/user/usecase"
	"github.com/fruverhq/fruver-pos/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadEnv()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := connectPostgres(cfg)
	if err != nil {
		log.Error("connect postgres", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to postgres", zap.String("host", cfg.Postgres.Host))

	if err := runMigrations(cfg); err != nil {
		log.Error("run migrations", zap.Error(err))
		os.Exit(1)
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("redis unreachable, stock adjustments will fail", zap.Error(err))
		}
		cancel()
	}

	auditRepo := auditrepo.NewPGRepository(db)
	sinks := []audit.Sink{audit.NewStoreSink(auditRepo, log)}
	if cfg.Kafka.Enabled {
		sinks = append(sinks, audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, log))
		log.Info("kafka audit mirror enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	sink := audit.NewFanout(sinks...)

	userRepo := userrepo.NewPGRepository(db)
	productRepo := productrepo.NewPGRepository(db)
	inventoryRepo := inventoryrepo.NewPGRepository(db)
	tillRepo := tillrepo.NewPGRepository(db)
	saleRepo := salerepo.NewPGRepository(db)

	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	stockLedger := inventoryusecase.NewStockLedger(inventoryRepo, log)
	userUC := userusecase.NewUserUseCase(userRepo, log)
	authUC := auth.NewAuthUseCase(userRepo, tokens, sink, log)
	productUC := productusecase.NewProductUseCase(productRepo, redisClient, log)
	tillUC := tillusecase.NewTillUseCase(tillRepo, sink, log)

	var checkpoint sale.Checkpoint = sale.NopCheckpoint{}
	if cfg.FaultInjectionActive() {
		checkpoint = sale.ContextCheckpoint{}
		log.Warn("fault injection checkpoints armed")
	}
	saleUC := saleusecase.NewSaleUseCase(saleRepo, productRepo, stockLedger, tillUC, sink, checkpoint, log)

	router := server.NewRouter(cfg, tokens, server.Handlers{
		Auth:     authhandler.NewAuthHandler(authUC),
		Users:    userhandler.NewUserHandler(userUC),
		Products: producthandler.NewProductHandler(productUC),
		Tills:    tillhandler.NewTillHandler(tillUC),
		Sales:    salehandler.NewSaleHandler(saleUC, cfg.FaultInjectionActive()),
		Audit:    audithandler.NewAuditHandler(auditRepo),
	})

	srv := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}

func connectPostgres(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Postgres.User, cfg.Postgres.Password,
		cfg.Postgres.Host, cfg.Postgres.Port,
		cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)
	return db, nil
}

func runMigrations(cfg *config.Config) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	dsn := fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Postgres.User, cfg.Postgres.Password,
		cfg.Postgres.Host, cfg.Postgres.Port,
		cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
