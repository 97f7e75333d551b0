// Package web is the HTTP shell around the packet workflow: login gate,
// per-session configuration and the generate/download/email endpoints.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"welcome-packet-service/internal/audit"
	"welcome-packet-service/internal/auth"
	"welcome-packet-service/internal/common/config"
	"welcome-packet-service/internal/common/logger"
	"welcome-packet-service/internal/common/observability"
	"welcome-packet-service/internal/notify"
	"welcome-packet-service/internal/web/session"
	"welcome-packet-service/internal/workflow"
)

// CRMFactory builds a CRM client bound to one API key. Indirection here
// lets tests point the workflow at a stub CRM.
type CRMFactory func(apiKey string) workflow.CRM

type Server struct {
	cfg        *config.Config
	logger     logger.Logger
	sessions   *session.Store
	auth       *auth.Authenticator
	filler     workflow.Filler
	crmFactory CRMFactory
	audit      *audit.Store
	mailer     *notify.Mailer
	obs        *observability.Observability
	router     *gin.Engine
}

// Options carries the optional collaborators; nil disables the feature.
type Options struct {
	Audit  *audit.Store
	Mailer *notify.Mailer
	Obs    *observability.Observability
}

func NewServer(cfg *config.Config, log logger.Logger, sessions *session.Store, authenticator *auth.Authenticator, filler workflow.Filler, crmFactory CRMFactory, opts Options) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:        cfg,
		logger:     log.WithFields(map[string]interface{}{"component": "web"}),
		sessions:   sessions,
		auth:       authenticator,
		filler:     filler,
		crmFactory: crmFactory,
		audit:      opts.Audit,
		mailer:     opts.Mailer,
		obs:        opts.Obs,
		router:     router,
	}

	router.Use(s.requestMetrics())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/login", s.handleLogin)

		authed := api.Group("")
		authed.Use(s.requireSession())
		{
			authed.POST("/logout", s.handleLogout)
			authed.GET("/me", s.handleMe)
			authed.PUT("/session/key", s.handleSetAPIKey)
			authed.GET("/template", s.handleTemplateStatus)
			authed.POST("/template", s.handleTemplateUpload)
			authed.DELETE("/template", s.handleTemplateClear)
			authed.POST("/packets", s.handleGenerate)
			authed.POST("/packets/email", s.handleEmailPacket)
		}
	}

	return s
}

// Handler exposes the router for tests and the HTTP server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", map[string]interface{}{
		"address": s.cfg.Server.Address,
	})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.cfg.App.Name})
}
