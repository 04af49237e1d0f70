// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"nutritrack/config"
	"nutritrack/pkg/logger"
)

type Server struct {
	server *http.Server
	logger *logger.Logger
}

func NewServer(cfg config.ServerConfig, handler http.Handler, logger *logger.Logger) *Server {
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second, // AI plan generation is slow
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: logger,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
