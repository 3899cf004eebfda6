package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rtb-ict/devicehub/internal/flow"
	"github.com/rtb-ict/devicehub/internal/gateway"
	"github.com/rtb-ict/devicehub/internal/handler"
	"github.com/rtb-ict/devicehub/internal/middleware"
	"github.com/rtb-ict/devicehub/internal/model"
	"github.com/rtb-ict/devicehub/internal/session"
	ws "github.com/rtb-ict/devicehub/internal/websocket"
)

// Config carries the server-level knobs that are not owned by a subsystem.
type Config struct {
	// SessionTTL bounds both the stored session and its cookie.
	SessionTTL time.Duration
	// WSOrigins restricts websocket upgrades to these origin patterns.
	WSOrigins []string
}

type Server struct {
	hub         *ws.Hub
	sessions    session.Store
	authH       *handler.AuthHandler
	deviceH     *handler.DeviceHandler
	schoolH     *handler.SchoolHandler
	userH       *handler.UserHandler
	analyticsH  *handler.AnalyticsHandler
	rateLimiter *middleware.RateLimiter
	wsOrigins   []string
	logger      *slog.Logger
}

func New(gw *gateway.Client, sessions session.Store, flows *flow.Manager, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	cookieTTL := int(cfg.SessionTTL / time.Second)

	return &Server{
		hub:         hub,
		sessions:    sessions,
		authH:       handler.NewAuthHandler(flows, cookieTTL, logger.With("component", "auth")),
		deviceH:     handler.NewDeviceHandler(gw, sessions, hub, logger.With("component", "device")),
		schoolH:     handler.NewSchoolHandler(gw, sessions, hub, logger.With("component", "school")),
		userH:       handler.NewUserHandler(gw, sessions, hub, logger.With("component", "user")),
		analyticsH:  handler.NewAnalyticsHandler(gw, sessions, logger.With("component", "analytics")),
		rateLimiter: middleware.NewRateLimiter(),
		wsOrigins:   cfg.WSOrigins,
		logger:      logger,
	}
}

// RateLimiter returns the limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public auth routes, rate limited per client IP
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /verify-otp", s.rateLimitedHandler(s.authH.VerifyOTP))
	outerMux.HandleFunc("POST /forgot-password", s.rateLimitedHandler(s.authH.ForgotPassword))
	outerMux.HandleFunc("POST /verify-reset-otp", s.rateLimitedHandler(s.authH.VerifyResetOTP))
	outerMux.HandleFunc("POST /reset-password", s.rateLimitedHandler(s.authH.ResetPassword))

	outerMux.HandleFunc("GET /healthz", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.Handler())

	// Protected routes behind the session guard
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	guard := middleware.RequireSession(s.sessions)
	outerMux.Handle("/", guard(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	staffOnly := middleware.RequireRoles(model.RoleAdmin, model.RoleRTBStaff)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Device routes. Every role can browse; deletion is admin only.
	mux.HandleFunc("GET /api/devices", s.deviceH.List)
	mux.HandleFunc("POST /api/devices", s.deviceH.Create)
	mux.HandleFunc("GET /api/devices/{id}", s.deviceH.Get)
	mux.HandleFunc("PUT /api/devices/{id}", s.deviceH.Update)
	mux.Handle("DELETE /api/devices/{id}", adminOnly(http.HandlerFunc(s.deviceH.Delete)))
	mux.Handle("POST /api/devices/bulk-import", staffOnly(http.HandlerFunc(s.deviceH.BulkImport)))

	// School routes
	mux.HandleFunc("GET /api/schools", s.schoolH.List)
	mux.HandleFunc("GET /api/schools/{id}", s.schoolH.Get)
	mux.Handle("POST /api/schools", staffOnly(http.HandlerFunc(s.schoolH.Create)))
	mux.Handle("PUT /api/schools/{id}", staffOnly(http.HandlerFunc(s.schoolH.Update)))
	mux.Handle("DELETE /api/schools/{id}", staffOnly(http.HandlerFunc(s.schoolH.Delete)))

	// User management is staff territory
	mux.Handle("GET /api/users", staffOnly(http.HandlerFunc(s.userH.List)))
	mux.Handle("POST /api/users", staffOnly(http.HandlerFunc(s.userH.Create)))
	mux.Handle("GET /api/users/{id}", staffOnly(http.HandlerFunc(s.userH.Get)))
	mux.Handle("PUT /api/users/{id}", staffOnly(http.HandlerFunc(s.userH.Update)))
	mux.Handle("DELETE /api/users/{id}", staffOnly(http.HandlerFunc(s.userH.Delete)))

	// Analytics and search
	mux.Handle("GET /api/analytics", staffOnly(http.HandlerFunc(s.analyticsH.Analytics)))
	mux.HandleFunc("GET /api/search", s.analyticsH.Search)

	// WebSocket
	mux.Handle("GET /ws", ws.Handler(s.hub, s.wsOrigins, s.logger.With("component", "websocket")))
}
