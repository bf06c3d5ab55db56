package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Subham7008/Quick-Serve/internal/config"
	"github.com/Subham7008/Quick-Serve/internal/database"
	"github.com/Subham7008/Quick-Serve/internal/handler"
	"github.com/Subham7008/Quick-Serve/internal/logging"
	"github.com/Subham7008/Quick-Serve/internal/middleware"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository"
	"github.com/Subham7008/Quick-Serve/internal/repository/memory"
	"github.com/Subham7008/Quick-Serve/internal/repository/mongostore"
	"github.com/Subham7008/Quick-Serve/internal/repository/mysqlstore"
	"github.com/Subham7008/Quick-Serve/internal/router"
	"github.com/Subham7008/Quick-Serve/internal/service"
	"github.com/Subham7008/Quick-Serve/internal/telemetry"
)

const serviceName = "quick-serve"

func main() {
	_ = godotenv.Load() // a missing .env is fine, the environment may be set already
	cfg := config.Load()
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// run owns every resource it opens; its deferred cleanups have finished
// by the time it returns.
func run(cfg config.Config, logger *slog.Logger) error {
	shutdownTelemetry := telemetry.Setup(serviceName, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer closeStores()

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return fmt.Errorf("snowflake node: %w", err)
	}

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
		go queue.NewConsumer(cfg.AMQPURL, "logs", logger).Run(ctx)
	}

	auth := service.NewAuthService(stores, pub, service.AuthConfig{
		JWTSecret:         cfg.JWTSecret,
		UserTokenTTL:      time.Duration(cfg.UserTokenTTLHours) * time.Hour,
		ShopOwnerTokenTTL: time.Duration(cfg.ShopOwnerTokenTTLHours) * time.Hour,
		OTPTTL:            time.Duration(cfg.OTPTTLMin) * time.Minute,
		BcryptCost:        cfg.BcryptCost,
	}, logger)
	lifecycle := service.NewLifecycleService(stores, pub, node, logger)
	records := service.NewRecordsService(stores, logger)

	rlCfg := config.LoadRateLimitConfig()
	var limiter middleware.Limiter
	if rdb := config.NewRedisClient(logger); rdb != nil {
		defer func() { _ = rdb.Close() }()
		limiter = middleware.NewRedisBucket(rlCfg, rdb)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(requestLogger(logger))

	router.RegisterRoutes(e)
	api := e.Group(router.APIPrefix)
	requireAuth := middleware.JWTAuth(auth, logger)
	router.RegisterAuth(api,
		handler.NewAuthHandler(auth, logger),
		handler.NewShopOwnerHandler(auth, logger),
		requireAuth,
		middleware.RateLimit(rlCfg, limiter, logger),
	)
	router.RegisterServiceRequests(api, handler.NewServiceRequestHandler(lifecycle, logger), requireAuth)
	router.RegisterCustomers(api,
		handler.NewCustomerHandler(records, logger),
		handler.NewPaymentHandler(records, logger),
		requireAuth,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(e, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	return nil
}

// openStores wires the identity tables in MySQL and the intake documents in
// MongoDB, or a single in-process store when STORE_DRIVER=memory.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Stores, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return repository.Stores{}, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return repository.Stores{}, nil, err
	}

	client, err := database.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		_ = db.Close()
		return repository.Stores{}, nil, err
	}
	mdb := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(context.Background())
		_ = db.Close()
		return repository.Stores{}, nil, err
	}

	var st repository.Stores
	mysqlstore.Register(&st, db)
	mongostore.Register(&st, mongostore.NewCollections(mdb), mongostore.TxRunner{Client: client, Enabled: cfg.MongoTransactions})

	closeAll := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
		_ = db.Close()
	}
	return st, closeAll, nil
}

// requestLogger sends one structured line per request to slog.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}
