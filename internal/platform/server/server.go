package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/coverbid/benefits-engine/internal/adapters/http/handler"
	"github.com/coverbid/benefits-engine/internal/platform/config"
	"github.com/coverbid/benefits-engine/internal/platform/metrics"
)

// Server は HTTP サーバーのライフサイクルを管理します。
type Server struct {
	app             *fiber.App
	listenAddr      string
	shutdownTimeout time.Duration
	log             *zap.Logger
}

// New は指定されたアドレスで待ち受ける HTTP サーバーを構築します。
func New(cfg config.ServerConfig, api *handler.API, m *metrics.Metrics, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(log, m))

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Register(app)

	return &Server{
		app:             app,
		listenAddr:      cfg.ListenAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると安全に停止します。
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.listenAddr)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down", zap.Duration("timeout", s.shutdownTimeout))
		return s.app.ShutdownWithTimeout(s.shutdownTimeout)
	case err := <-errCh:
		return err
	}
}

// requestLogger はリクエストごとの構造化ログと計測値記録を行います。
func requestLogger(log *zap.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		route := c.Route().Path

		if m != nil {
			m.ObserveRequest(c.Method(), route, strconv.Itoa(status), elapsed)
		}

		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)

		return err
	}
}
