// Package server exposes the ingestion pipeline over HTTP: one editing
// session per client, carrying a decoded source, a trim region, a
// debounced slug check, and at most one submission in flight.
package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/saravn-ent/tamilring/config"
	"github.com/saravn-ent/tamilring/internal/cache"
	"github.com/saravn-ent/tamilring/internal/catalog"
	"github.com/saravn-ent/tamilring/internal/engine"
	"github.com/saravn-ent/tamilring/internal/notify"
	"github.com/saravn-ent/tamilring/internal/storage"
	"github.com/saravn-ent/tamilring/internal/submission"
	"github.com/saravn-ent/tamilring/internal/transcode"
)

// Server handles HTTP requests for the ring ingestion pipeline
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	engineCfg   engine.Config
	transcoder  submission.Transcoder
	store       storage.Storage
	catalog     catalog.Catalog
	notifier    notify.Notifier
	invalidator cache.Invalidator

	uploadDir string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a new HTTP server instance
func New(cfg *config.Config) (*Server, error) {
	engineCfg := engine.Config{
		FFmpegPath:  cfg.Engine.FFmpegPath,
		FFprobePath: cfg.Engine.FFprobePath,
		ScratchRoot: cfg.Engine.ScratchDir,
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	var cat catalog.Catalog
	if cfg.Catalog.BaseURL != "" {
		cat = catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey)
	} else {
		cat = catalog.NewMemory()
	}

	uploadDir := filepath.Join(cfg.Engine.ScratchDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	server := &Server{
		cfg:         cfg,
		engineCfg:   engineCfg,
		transcoder:  transcode.NewOrchestrator(engineCfg),
		store:       store,
		catalog:     cat,
		notifier:    notify.NewNotifier(cfg.Notify.WebhookURL),
		invalidator: cache.NewInvalidator(cfg.Cache.RevalidateURL, cfg.Cache.Secret),
		uploadDir:   uploadDir,
		sessions:    make(map[string]*Session),
	}

	router := gin.Default()
	server.setupRoutes(router)
	server.router = router

	return server, nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "gcs":
		return storage.NewGCSStorage(
			context.Background(),
			cfg.Storage.Bucket,
			cfg.Storage.ObjectPrefix,
			cfg.Storage.PublicBaseURL,
			cfg.Storage.CredentialsFile,
		)
	case "local":
		return storage.NewLocalFileStorage(cfg.Storage.OutputDir, cfg.Storage.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/health", s.health)

	// API endpoints
	api := router.Group("/api/v1")
	{
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.cancelSession)
		api.PATCH("/sessions/:id/region", s.updateRegion)
		api.PUT("/sessions/:id/metadata", s.updateMetadata)
		api.GET("/sessions/:id/slug", s.getSlugStatus)
		api.POST("/sessions/:id/submit", s.submit)
		api.GET("/sessions/:id/submission", s.getSubmissionStatus)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}
