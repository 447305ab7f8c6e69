// Package api exposes backtest runs over HTTP for the web dashboard.
package api

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	handler  *Handler
	staticFS fs.FS
}

// NewServer builds the dashboard server. staticFS holds the frontend; pass
// nil to serve the API only.
func NewServer(h *Handler, port int, staticFS fs.FS) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine:   engine,
		handler:  h,
		staticFS: staticFS,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.POST("/backtest", s.handler.RunBacktest)
		api.POST("/sweep", s.handler.RunSweep)
		api.GET("/runs/:id", s.handler.GetRun)
		api.GET("/runs/:id/chart.svg", s.handler.GetChart)
		api.GET("/name/:symbol", s.handler.GetName)
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.staticFS != nil {
		s.engine.GET("/", func(c *gin.Context) {
			data, err := fs.ReadFile(s.staticFS, "index.html")
			if err != nil {
				c.String(http.StatusNotFound, "index.html not found")
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})
	}
}

func (s *Server) Start() error {
	log.Printf("[api] dashboard listening on http://localhost%s", s.server.Addr)
	log.Println("[api] endpoints:")
	log.Println("  POST /api/backtest           - run a backtest")
	log.Println("  POST /api/sweep              - run a window sweep")
	log.Println("  GET  /api/runs/:id           - result bundle")
	log.Println("  GET  /api/runs/:id/chart.svg - three-panel chart")
	log.Println("  GET  /api/name/:symbol       - symbol display name")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[api] %s %s %d %v", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
