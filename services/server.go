package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gigbridge/backend/models"
	"github.com/gigbridge/backend/repository"
	ws "github.com/gigbridge/backend/websocket"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config                *Config
	store                 repository.Store
	rawDB                 *gorm.DB
	authService           *AuthService
	authEndpoints         *AuthEndpoints
	contractService       *ContractService
	interviewService      *InterviewService
	notificationService   *NotificationService
	sweepJob              *SweepJob
	hireEndpoints         *HireEndpoints
	interviewEndpoints    *InterviewEndpoints
	notificationEndpoints *NotificationEndpoints
	wsHub                 *ws.Hub
	upgrader              websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(store repository.Store, rawDB *gorm.DB) {
	s.store = store
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	// WebSocket hub delivers notifications to connected users
	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	s.notificationService = NewNotificationService(s.store, s.wsHub, s.config.Notifications.FlushInterval)
	s.notificationService.StartFlushLoop()
	slog.Info("Notification service initialized", "flush_interval", s.config.Notifications.FlushInterval)

	s.contractService = NewContractService(s.store, s.notificationService)

	// Video interviews get room tokens from the signaling service when one is
	// configured, locally generated tokens otherwise
	var allocator RoomAllocator
	if s.config.Signaling.URL != "" {
		allocator = NewSignalingClient(s.config.Signaling.URL, s.config.Signaling.APIKey)
		slog.Info("Signaling client initialized", "url", s.config.Signaling.URL)
	} else {
		allocator = &LocalRoomAllocator{}
		slog.Info("Signaling service not configured, using local room tokens")
	}
	s.interviewService = NewInterviewService(s.store, s.notificationService, allocator)

	s.sweepJob = NewSweepJob(s.contractService, s.config.Sweep.Hour)
	s.sweepJob.Start()
	slog.Info("Sweep job initialized", "hour", s.config.Sweep.Hour)

	// Initialize authentication services
	if s.config.JWT.Secret != "" {
		s.authService = NewAuthService(s.store, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		slog.Info("Authentication service initialized")
	} else {
		slog.Warn("JWT secret not configured, authentication disabled")
	}

	s.hireEndpoints = NewHireEndpoints(s.contractService)
	s.interviewEndpoints = NewInterviewEndpoints(s.interviewService)
	s.notificationEndpoints = NewNotificationEndpoints(s.notificationService)

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		// WebSocket route (protected)
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Get("/ws", s.websocketHandlerFunc)
			})
		} else {
			r.Get("/ws", s.websocketHandlerFunc)
		}

		// Authentication routes
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}

		// Domain routes (protected)
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				s.hireEndpoints.RegisterRoutes(r)
				s.interviewEndpoints.RegisterRoutes(r)
				s.notificationEndpoints.RegisterRoutes(r)
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	if s.sweepJob != nil {
		s.sweepJob.Stop()
	}
	if s.notificationService != nil {
		s.notificationService.StopFlushLoop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	// Get user from context (set by auth middleware)
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "email", user.Email)

	client := s.wsHub.RegisterClient(conn, user.ID)

	go client.ReadPump()
	client.WritePump()
}
