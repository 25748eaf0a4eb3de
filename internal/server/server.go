// Package server exposes the recommendation service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/quizadapt/internal/recommend"
)

// Config controls the HTTP surface.
type Config struct {
	Addr         string
	AllowOrigins []string

	// ShutdownTimeout bounds graceful shutdown once the context ends.
	ShutdownTimeout time.Duration
}

// DefaultConfig listens on :8080 and allows a local front end.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		AllowOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server routes requests to a recommend.Service.
type Server struct {
	svc    *recommend.Service
	cfg    Config
	engine *gin.Engine
}

// New builds the router.
func New(svc *recommend.Service, cfg Config) *Server {
	s := &Server{svc: svc, cfg: cfg, engine: gin.New()}

	s.engine.Use(gin.Logger(), gin.Recovery(), requestID())
	s.engine.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.POST("/users", s.register)
		api.DELETE("/users/:id", s.deleteUser)
		api.GET("/users/:id/performance", s.performance)
		api.GET("/users/:id/quizzes", s.quizzes)
		api.GET("/users/:id/history", s.history)
		api.POST("/users/:id/quizzes/adaptive", s.adaptive)
		api.POST("/users/:id/quizzes/:quizID/submit", s.submit)
		api.GET("/quizzes/:quizID", s.quiz)
	}
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx ends and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "listening on %s\n", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsConfig allows the given origins, or any origin without credentials when
// none are listed.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// requestID echoes X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
