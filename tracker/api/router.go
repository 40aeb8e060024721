// Package api exposes the tracked server state over HTTP for operators.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smell-of-curry/servers-info-track/tracker/status"
	"golang.org/x/time/rate"
)

// Reporter ...
type Reporter interface {
	Report() status.Report
}

// Pinger ...
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// NewRouter builds the status routes. Requests must carry key in the
// authorization header unless key is empty.
func NewRouter(key string, reporter Reporter, db Pinger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(newRateLimiter(rate.Every(time.Second), 5).middleware())
	if key != "" {
		router.Use(func(c *gin.Context) {
			if c.GetHeader("authorization") != key {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Next()
		})
	}

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, reporter.Report())
	})
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"database": "unreachable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"database": "ok"})
	})
	return router
}

// Server serves the status routes until closed.
type Server struct {
	log *slog.Logger
	srv *http.Server
}

// NewServer ...
func NewServer(log *slog.Logger, addr, key string, reporter Reporter, db Pinger) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(key, reporter, db),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("status api listening", "address", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("status api stopped", "error", err)
		}
	}()
}

// Close shuts the server down, waiting at most a few seconds for open requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
