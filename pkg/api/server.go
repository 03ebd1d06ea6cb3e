// Package api exposes the REST surface: profile, education, bank, and CV
// CRUD, the chat triple, and the operator-only admin endpoints. Handlers
// translate typed storage and chat errors into HTTP statuses; all other
// logic lives below this layer.
package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/assistant"
	"github.com/cvault/cvault/pkg/storage"
)

// Server wires the storage context, chat service, and completion client
// behind the HTTP handlers.
type Server struct {
	store   *storage.Context
	chat    *assistant.Service
	client  *assistant.Client
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger

	// analysisWG tracks in-flight background analysis runs so tests and
	// shutdown can wait for them.
	analysisWG sync.WaitGroup
}

// NewServer creates the API server
func NewServer(store *storage.Context, chat *assistant.Service, client *assistant.Client,
	config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:   store,
		chat:    chat,
		client:  client,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Router builds the chi router with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(callerMiddleware)

		// Health check
		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// User profile
		r.Post("/users", s.metrics.InstrumentHandler("POST", "/api/v1/users", s.handleCreateUser))
		r.Get("/users/me", s.metrics.InstrumentHandler("GET", "/api/v1/users/me", s.handleGetSelf))
		r.Get("/users/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/users/{id}", s.handleGetUser))
		r.Put("/users/me", s.metrics.InstrumentHandler("PUT", "/api/v1/users/me", s.handleUpdateUser))

		// Education
		r.Post("/education", s.metrics.InstrumentHandler("POST", "/api/v1/education", s.handleAddEducation))
		r.Get("/education", s.metrics.InstrumentHandler("GET", "/api/v1/education", s.handleGetEducation))
		r.Put("/education", s.metrics.InstrumentHandler("PUT", "/api/v1/education", s.handleUpdateEducation))

		// Bank information
		r.Post("/bank", s.metrics.InstrumentHandler("POST", "/api/v1/bank", s.handleAddBankInfo))
		r.Get("/bank", s.metrics.InstrumentHandler("GET", "/api/v1/bank", s.handleGetBankInfo))
		r.Put("/bank", s.metrics.InstrumentHandler("PUT", "/api/v1/bank", s.handleUpdateBankInfo))
		r.Get("/bank/{userID}", s.metrics.InstrumentHandler("GET", "/api/v1/bank/{userID}", s.handleGetBankInfoByUser))

		// CVs
		r.Post("/cvs", s.metrics.InstrumentHandler("POST", "/api/v1/cvs", s.handleUploadCV))
		r.Get("/cvs", s.metrics.InstrumentHandler("GET", "/api/v1/cvs", s.handleListCVs))
		r.Get("/cvs/latest", s.metrics.InstrumentHandler("GET", "/api/v1/cvs/latest", s.handleLatestCV))
		r.Get("/cvs/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/cvs/{id}", s.handleGetCV))
		r.Put("/cvs/{id}", s.metrics.InstrumentHandler("PUT", "/api/v1/cvs/{id}", s.handleUpdateCV))
		r.Delete("/cvs/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/cvs/{id}", s.handleDeleteCV))

		// Chat
		r.Post("/chat/start", s.metrics.InstrumentHandler("POST", "/api/v1/chat/start", s.handleStartChat))
		r.Post("/chat/message", s.metrics.InstrumentHandler("POST", "/api/v1/chat/message", s.handleSendMessage))
		r.Get("/chat/{sessionID}/history", s.metrics.InstrumentHandler("GET", "/api/v1/chat/{sessionID}/history", s.handleChatHistory))

		// Admin (operator only)
		r.Route("/admin", func(r chi.Router) {
			r.Use(operatorMiddleware(s.config.OperatorID))
			r.Post("/api-key", s.metrics.InstrumentHandler("POST", "/api/v1/admin/api-key", s.handleSetAPIKey))
			r.Post("/clear-storage", s.metrics.InstrumentHandler("POST", "/api/v1/admin/clear-storage", s.handleClearStorage))
			r.Post("/clear-chat", s.metrics.InstrumentHandler("POST", "/api/v1/admin/clear-chat", s.handleClearChat))
			r.Get("/stats", s.metrics.InstrumentHandler("GET", "/api/v1/admin/stats", s.handleStats))
		})
	})

	return r
}

// requestLogger logs every request through the process logger so API traffic
// lands in the same structured stream as the rest of the server.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// Start runs the HTTP server until it fails
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	s.logger.Info("starting REST API server", zap.String("addr", addr))

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv.ListenAndServe()
}

// WaitForAnalysis blocks until every in-flight background analysis run has
// finished.
func (s *Server) WaitForAnalysis() {
	s.analysisWG.Wait()
}
