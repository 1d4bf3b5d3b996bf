package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"myradio/internal/api/handlers"
	"myradio/internal/api/live"
	"myradio/internal/api/middleware"
	"myradio/internal/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg    *config.Config
	reader handlers.Reader
	roster handlers.Roster
	hub    *live.Hub
	router *gin.Engine
}

// New wires the routes. hub may be nil to disable the live feed.
func New(cfg *config.Config, reader handlers.Reader, roster handlers.Roster, hub *live.Hub) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		reader: reader,
		roster: roster,
		hub:    hub,
		router: gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.SilentLogger("/health"), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	radioHandler := handlers.NewRadioHandler(s.reader, s.roster)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "myradio"})
	})

	radio := s.router.Group("/api/radio")
	{
		radio.GET("/current", radioHandler.GetCurrent)
		radio.POST("/current", radioHandler.PostCurrent)

		radio.GET("/stream-status", radioHandler.GetStreamStatus)
		radio.POST("/stream-status", radioHandler.RefreshStreamStatus)

		radio.GET("/history", radioHandler.GetHistory)
		radio.GET("/stats", radioHandler.GetStats)

		radio.GET("/listeners", radioHandler.GetListeners)
		radio.POST("/listeners", radioHandler.PostListeners)

		radio.GET("/playlist", radioHandler.GetPlaylist)
		radio.POST("/playlist", radioHandler.PostPlaylist)

		if s.hub != nil {
			radio.GET("/live", gin.WrapH(s.hub))
		}
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 API Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Println("🛑 API Server shutting down")
	return srv.Shutdown(shutdownCtx)
}
