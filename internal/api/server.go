package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"

	"github.com/blockedby/safebot/internal/metrics"
)

// Server represents the Fuego API server.
type Server struct {
	fuego *fuego.Server
	http  *http.Server
	deps  *Dependencies
	cfg   *Config
}

// Dependencies contains all service dependencies.
type Dependencies struct {
	Chats    ChatStore
	Filter   FilterSource
	Telegram TelegramStatus
}

// Config holds API server configuration.
type Config struct {
	Port        int
	Title       string
	Description string
	Version     string
}

// NewServer creates a new Fuego API server.
func NewServer(cfg *Config, deps *Dependencies) *Server {
	s := fuego.NewServer(
		fuego.WithAddr(fmt.Sprintf(":%d", cfg.Port)),
		fuego.WithEngineOptions(
			fuego.WithOpenAPIConfig(fuego.OpenAPIConfig{
				PrettyFormatJSON: true,
				JSONFilePath:     "openapi.json",
				SwaggerURL:       "/docs",
				SpecURL:          "/openapi.json",
			}),
		),
	)

	s.OpenAPI.Description().Info.Title = cfg.Title
	s.OpenAPI.Description().Info.Description = cfg.Description
	s.OpenAPI.Description().Info.Version = cfg.Version

	// Chi middleware (Fuego is net/http compatible)
	fuego.Use(s, middleware.RequestID)
	fuego.Use(s, middleware.RealIP)
	fuego.Use(s, middleware.Logger)
	fuego.Use(s, middleware.Recoverer)
	fuego.Use(s, cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	srv := &Server{
		fuego: s,
		deps:  deps,
		cfg:   cfg,
	}
	srv.registerRoutes()

	srv.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

func (s *Server) registerRoutes() {
	fuego.Get(s.fuego, "/health", s.healthCheck,
		option.Summary("Health Check"),
		option.Description("Returns the health status of the service"),
		option.Tags("System"),
	)

	fuego.Get(s.fuego, "/api/v1/auth/status", s.getAuthStatus,
		option.Summary("Get Auth Status"),
		option.Description("Returns Telegram authentication status"),
		option.Tags("System"),
	)

	fuego.Post(s.fuego, "/api/v1/scan", s.scanMessage,
		option.Summary("Scan Message"),
		option.Description("Runs the advertisement scan over a message without acting on it"),
		option.Tags("Scan"),
	)

	chatsGroup := fuego.Group(s.fuego, "/api/v1/chats",
		option.Tags("Chats"),
	)

	fuego.Get(chatsGroup, "/{id}", s.getChat,
		option.Summary("Get Chat Settings"),
		option.Description("Returns the moderation settings of a chat; unknown chats report defaults"),
	)

	fuego.Put(chatsGroup, "/{id}", s.updateChat,
		option.Summary("Update Chat Settings"),
		option.Description("Sets silent and echo mode of a chat; omitted fields are kept"),
	)

	s.fuego.Mux.Handle("GET /metrics", metrics.Handler())
	s.mountDocs()
}

// mountDocs serves the Scalar UI and the generated OpenAPI document on the
// mux, since the server is not started through fuego.Run.
func (s *Server) mountDocs() {
	s.fuego.Mux.Handle("GET /docs", ScalarHandler("/openapi.json", s.cfg.Title, s.cfg.Description))
	s.fuego.Mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.fuego.OpenAPI.Description()); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.fuego.Mux
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
