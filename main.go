package main

import (
	"context"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"log/slog"
	"optimizer/api/rest"
	"optimizer/config"
	"optimizer/converter"
	"optimizer/converter/vips"
	"optimizer/service"
	"optimizer/shared/log"
	"optimizer/shared/metrics"
	"optimizer/shared/trace"
	"os"
	"os/signal"
	"syscall"
)

//	@title			Image Optimizer API
//	@version		1.0.0
//	@description	API for image conversion and optimization.

// @BasePath	/
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file", "error", err)
	}

	serviceConfig := config.New()

	ctx := context.Background()

	shutdownTrace, err := trace.InitTrace(ctx, serviceConfig.TraceExporter, serviceConfig.AppName, serviceConfig.AppVersion)
	if err != nil {
		slog.Error("Error configuring tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTrace(ctx); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	logger := log.InitLogger(ctx, serviceConfig.LogLevel, serviceConfig.TraceExporter == "otlp")
	defer func() {
		_ = logger.Sync()
	}()

	backend, closeBackend := mustBackend(serviceConfig, logger)
	defer closeBackend()

	m := metrics.New()

	app := fiber.New(fiber.Config{
		AppName:      serviceConfig.AppName,
		BodyLimit:    serviceConfig.BodyLimit(),
		ErrorHandler: rest.ErrorHandler(serviceConfig, logger),
	})
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{Logger: logger}),
		m.Middleware(),
		compress.New(compress.Config{Level: compress.LevelBestSpeed}),
		etag.New(),
	)

	if serviceConfig.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: serviceConfig.SwaggerFile,
			Path:     "docs",
			Title:    serviceConfig.AppName,
		}))
	}
	if serviceConfig.MetricsEnabled {
		app.Get("/metrics", m.Handler())
	}

	imageService := service.NewImageService(backend, serviceConfig.MaxOutputPixels, m, logger)

	rest.NewImageController(app, serviceConfig, imageService, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(serviceConfig.ShutdownTimeout); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Listening", zap.String("port", serviceConfig.Port), zap.String("backend", backend.Name()))
	if err = app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Panic(err.Error())
	}
}

func mustBackend(cfg *config.Config, logger *zap.Logger) (converter.Backend, func()) {
	strategy := converter.MustStrategy(logger)

	switch cfg.ImageBackend {
	case "vips":
		b, err := vips.New(strategy, cfg.MaxPixels, logger)
		if err != nil {
			logger.Panic("Failed to start vips backend", zap.Error(err))
		}
		return b, b.Shutdown
	case "native":
		return converter.NewNative(strategy, cfg.MaxPixels, logger), func() {}
	}

	logger.Panic("Unknown image backend", zap.String("backend", cfg.ImageBackend))
	return nil, nil
}
