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

	"marketdelivery/cmd"
	httpin "marketdelivery/internal/adapters/in/http"
	"marketdelivery/internal/adapters/out/postgres"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	configs, err := cmd.LoadConfig(os.Args[1:], logger)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	gormDB, err := gorm.Open(postgresdriver.Open(configs.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, app, configs, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) error {
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpin.NewRequestValidator()
	e.HTTPErrorHandler = httpin.ErrorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.InfoContext(c.Request().Context(), "request",
				"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	httpin.NewServer(app.HTTPHandlers(), app.Storage(), []byte(configs.JWTSecret)).Register(e)

	jobManager := app.JobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := e.Start(fmt.Sprintf("0.0.0.0:%d", configs.HTTPPort))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
