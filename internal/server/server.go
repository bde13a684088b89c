package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kartoza/heart-risk/internal/api"
	"github.com/kartoza/heart-risk/internal/classifier"
	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/prediction"
)

// Server holds all the components for the prediction service
type Server struct {
	cfg        config.Config
	logger     *zap.Logger
	httpServer *http.Server
	router     *mux.Router
	service    *prediction.Service
}

// New loads the model and wires the router. A model that fails to load is
// fatal: no Server is returned and nothing listens.
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clf, err := classifier.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("model loaded",
		zap.String("path", cfg.ModelPath),
		zap.Any("model", classifier.Describe(clf)))

	return NewWithClassifier(cfg, logger, clf)
}

// NewWithClassifier builds a Server around an already loaded classifier
func NewWithClassifier(cfg config.Config, logger *zap.Logger, clf classifier.Classifier) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := prediction.New(clf,
		prediction.WithCache(cfg.CacheSize),
		prediction.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		router:  mux.NewRouter(),
		service: service,
	}
	s.setupRoutes()

	// Stop may run before or while Start is listening
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	apiHandler := api.NewHandler(s.service, s.cfg, s.logger)
	apiHandler.Use(s.router)
	apiHandler.RegisterRoutes(s.router)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.cfg.Port)))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server. After Stop, Start returns
// http.ErrServerClosed.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
