// Package api exposes the station's local HTTP surface to the view layer:
// typed operations over the stores plus the SSE change stream.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yuzhenbei/booktravel/internal/events"
	"github.com/yuzhenbei/booktravel/internal/identity"
	"github.com/yuzhenbei/booktravel/internal/store"
)

// Server holds dependencies for the HTTP handlers.
type Server struct {
	feed          *store.FeedStore
	threads       *store.ThreadStore
	notifications *store.NotificationCenter
	station       *store.StationStore
	toasts        *store.ToastCenter
	identity      *identity.Client
	streamHandler *events.Handler

	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// Options configures the server.
type Options struct {
	Name           string
	AllowedOrigins []string
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(
	feed *store.FeedStore,
	threads *store.ThreadStore,
	notifications *store.NotificationCenter,
	station *store.StationStore,
	toasts *store.ToastCenter,
	idc *identity.Client,
	streamHandler *events.Handler,
	opts Options,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	name := opts.Name
	if name == "" {
		name = "BookTravel Station"
	}
	humaConfig := huma.DefaultConfig(name, "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		feed:          feed,
		threads:       threads,
		notifications: notifications,
		station:       station,
		toasts:        toasts,
		identity:      idc,
		streamHandler: streamHandler,
		router:        router,
		api:           api,
		logger:        logger,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerFeedRoutes()
	s.registerThreadRoutes()
	s.registerNotificationRoutes()
	s.registerStationRoutes()
	s.registerToastRoutes()

	// SSE endpoint registered directly on chi because huma does not model
	// long-lived streams.
	if streamHandler != nil {
		router.Get("/api/v1/stream", streamHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHealth",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"System"},
	}, s.handleHealth)
}

// HealthOutput wraps the health response.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" doc:"Server health status"`
	}
}

func (s *Server) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "healthy"
	return out, nil
}
