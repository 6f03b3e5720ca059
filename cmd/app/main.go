package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"waterline/api"
	"waterline/cmd"
	"waterline/internal/adapters/in/http"
	"waterline/internal/adapters/out/postgres"
	"waterline/internal/adapters/out/rabbitmq"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/telemetry"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("waterline stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := cmd.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	instruments, shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Settings{
		ServiceName:  config.ServiceName,
		Environment:  config.Environment,
		LogLevel:     config.LogLevel,
		OTLPEndpoint: config.OTLPEndpoint,
		OTLPInsecure: config.OTLPInsecure,
		StdoutTraces: config.StdoutTraces,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTelemetry(flushCtx)
	}()
	logger := instruments.Logger

	storage, err := openStorage(ctx, config)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	app, err := cmd.NewCompositionRoot(config, storage, instruments)
	if err != nil {
		return err
	}

	var publisher ports.EventPublisher
	if config.RabbitMQURL != "" {
		p, dialErr := rabbitmq.Dial(config.RabbitMQURL, config.RabbitMQExchange)
		if dialErr != nil {
			return fmt.Errorf("rabbitmq: %w", dialErr)
		}
		defer func() { _ = p.Close() }()
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL is empty, outbox messages will not be relayed")
	}

	jobManager, err := app.CreateJobManager(publisher)
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(); err != nil {
		return fmt.Errorf("jobs: %w", err)
	}
	defer jobManager.StopAll()

	e, err := newWebServer(app, config)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort))
	}()
	logger.Info("waterline started",
		slog.String("port", config.HTTPPort),
		slog.String("storage", config.Storage),
		slog.String("workflow", config.Workflow))

	select {
	case err = <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStorage(ctx context.Context, config cmd.Config) (cmd.Storage, error) {
	if config.Storage == cmd.StorageMemory {
		return cmd.MemoryStorage(), nil
	}

	db, err := gorm.Open(gormpostgres.Open(config.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return cmd.Storage{}, err
	}
	if err = db.WithContext(ctx).AutoMigrate(postgres.Models()...); err != nil {
		return cmd.Storage{}, fmt.Errorf("migrate: %w", err)
	}
	return cmd.PostgresStorage(db), nil
}

func newWebServer(app *cmd.CompositionRoot, config cmd.Config) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(echoLogLevel(config.LogLevel))
	e.Use(middleware.Recover())

	authenticator, err := app.CreateAuthenticator()
	if err != nil {
		return nil, err
	}
	doc, err := http.LoadOpenAPI(api.OpenAPI)
	if err != nil {
		return nil, err
	}
	validate, err := http.ValidateRequests(doc)
	if err != nil {
		return nil, err
	}

	server, err := app.CreateHTTPServer()
	if err != nil {
		return nil, err
	}
	gateway, err := app.CreateGateway(authenticator)
	if err != nil {
		return nil, err
	}

	http.RegisterPlatform(e, api.OpenAPI)
	server.Register(e, http.Authenticate(authenticator), validate)
	gateway.Register(e)
	return e, nil
}

func echoLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
