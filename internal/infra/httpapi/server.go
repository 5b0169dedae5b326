package httpapi

import (
	"context"
	"time"

	"attendance_exception_bot/internal/app"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	headerRequestID = "X-Request-ID"
	requestTimeout  = 10 * time.Second
)

// Server exposes the attendance service over HTTP.
type Server struct {
	app    *fiber.App
	svc    *app.AttendanceService
	logger *logrus.Entry
}

// NewServer wires middleware and routes. A nil gatherer disables /metrics.
func NewServer(svc *app.AttendanceService, gatherer prometheus.Gatherer, baseLogger *logrus.Entry) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			AppName:               "attendance-exception-bot",
		}),
		svc:    svc,
		logger: baseLogger,
	}

	s.app.Use(recover.New())
	s.app.Use(s.requestContext)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api")
	api.Post("/records", s.submit)
	api.Get("/records", s.view)
	api.Delete("/records/:id", s.remove)
	api.Delete("/records", s.clear)
	api.Get("/weekly", s.weekly)
	api.Get("/export.csv", s.exportCSV)
	api.Get("/export.xlsx", s.exportXLSX)

	return s
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.WithField("addr", addr).Info("HTTP API listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestContext tags every request with an id, bounds its context and logs the outcome.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(headerRequestID, id)
	c.Locals("request_id", id)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	entry := s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
		"duration":   time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("Request failed")
	} else {
		entry.Debug("Request served")
	}
	return err
}

func (s *Server) requestLogger(c *fiber.Ctx) *logrus.Entry {
	if id, ok := c.Locals("request_id").(string); ok {
		return s.logger.WithField("request_id", id)
	}
	return s.logger
}
