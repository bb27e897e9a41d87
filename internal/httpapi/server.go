// Package httpapi implements C7: the REST surface and WebSocket broadcast
// hub in front of C6's lifecycle manager and C3's operations layer.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/browsion/browsion-core/internal/actionlog"
	"github.com/browsion/browsion-core/internal/config"
	"github.com/browsion/browsion-core/internal/lifecycle"
	"github.com/browsion/browsion-core/internal/profile"
	"github.com/browsion/browsion-core/internal/redact"
)

// Server wires every component the HTTP surface depends on and owns the
// gin engine and WebSocket hub built on top of them.
type Server struct {
	cfg      *config.Config
	profiles *profile.Store
	manager  *lifecycle.Manager
	log      *actionlog.Log
	hub      *Hub
	metrics  *metrics

	engine *http.Server
}

// New builds a Server. The caller is expected to have already called
// manager.Restore so Running()/ClientFor reflect reattached browsers.
// redactor is shared with the lifecycle.Manager the caller built, so the
// action log and every client's network log apply the same rules.
func New(cfg *config.Config, profiles *profile.Store, manager *lifecycle.Manager, redactor *redact.Redactor) *Server {
	s := &Server{
		cfg:      cfg,
		profiles: profiles,
		manager:  manager,
		hub:      NewHub(),
		metrics:  newMetrics(),
	}
	s.log = actionlog.NewLog(cfg.ActionLogDir, cfg.ActionLogCapacity, redactor, s.hub.Broadcast)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	s.routes(router)

	s.engine = &http.Server{
		Addr:    "127.0.0.1:" + strconv.Itoa(cfg.HTTPPort),
		Handler: router,
	}
	return s
}

// Run starts the HTTP listener, the WebSocket hub's heartbeat loop, and the
// lifecycle manager's dead-process sweeper, blocking until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	go s.manager.RunSweeper(ctx, time.Duration(s.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := s.engine.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.log.Close()
		return s.engine.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
