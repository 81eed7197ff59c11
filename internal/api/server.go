package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"MarketSignal/internal/analyst"
	"MarketSignal/internal/logging"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	CORSOrigins    []string
	ProductionMode bool
}

// ScanStatus reports the progress of the watchlist scanner.
type ScanStatus interface {
	LastScanAt() time.Time
	// Len is the number of tracked symbol/timeframe signals.
	Len() int
}

// Server is the HTTP API and WebSocket stream.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	analyst    *analyst.Service
	hub        *Hub
	scans      ScanStatus
	config     ServerConfig
	logger     zerolog.Logger
}

// NewServer creates a new API server. scans may be nil when no scanner runs.
func NewServer(config ServerConfig, svc *analyst.Service, hub *Hub, scans ScanStatus, logger zerolog.Logger) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	logger = logging.Component(logger, "api")
	router.Use(requestLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(config.CORSOrigins) == 0 || (len(config.CORSOrigins) == 1 && config.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = config.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:  router,
		analyst: svc,
		hub:     hub,
		scans:   scans,
		config:  config,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/symbols", s.handleSymbols)
		api.GET("/signals/:symbol", s.handleSignal)
		api.GET("/patterns/:symbol", s.handlePatterns)
		api.GET("/sentiment/:symbol", s.handleSentiment)
		api.GET("/fundamentals/:symbol", s.handleFundamentals)
		api.GET("/history/:symbol", s.handleHistory)
		api.POST("/analyze", s.handleAnalyze)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", s.config.Addr).Msg("starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
