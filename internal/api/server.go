// Package api exposes the triage core to the browser UI over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// userHeader carries the caller's user identity. Authentication itself is
// the UI/OAuth layer's concern; the header only scopes feedback storage.
const userHeader = "X-User-Id"

const defaultUserID = "default"

// Server provides HTTP endpoints for the triage service
type Server struct {
	echo       *echo.Echo
	svc        *core.TriageService
	logger     *zap.Logger
	addr       string
	fetchLimit int64

	profileOnce sync.Once
	profileUser string
}

// NewServer creates a new HTTP server around the triage service
func NewServer(svc *core.TriageService, logger *zap.Logger, addr string, fetchLimit int64) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		svc:        svc,
		logger:     logger,
		addr:       addr,
		fetchLimit: fetchLimit,
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/classify", s.handleClassify)
	v1.POST("/triage", s.handleTriage)
	v1.POST("/reclassify", s.handleReclassify)
	v1.GET("/feedback", s.handleGetFeedback)
	v1.DELETE("/feedback/:timestamp", s.handleDeleteFeedback)
	v1.POST("/reply", s.handleReply)
	v1.POST("/archive", s.handleArchive)
}

// Start begins serving HTTP requests and blocks until shutdown
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.addr))
	err := s.echo.Start(s.addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// userID resolves the caller's user identity: the identity header when
// present, otherwise the mail account's profile address, otherwise a fixed
// default for single-user deployments.
func (s *Server) userID(c echo.Context) string {
	if id := c.Request().Header.Get(userHeader); id != "" {
		return id
	}

	s.profileOnce.Do(func() {
		profile, err := s.svc.UserProfile(c.Request().Context())
		if err != nil {
			s.logger.Debug("No mail profile available, using default user", zap.Error(err))
			profile = defaultUserID
		}
		s.profileUser = profile
	})

	return s.profileUser
}
