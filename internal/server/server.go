// Package server provides the HTTP REST API for duplicate contact detection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/estate-desk/internal/config"
	"github.com/jonathan/estate-desk/internal/db"
	"github.com/jonathan/estate-desk/internal/dedup"
	"github.com/jonathan/estate-desk/internal/server/middleware"
	"github.com/jonathan/estate-desk/internal/server/ratelimit"
	"github.com/jonathan/estate-desk/internal/service"
	"github.com/jonathan/estate-desk/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes caps request bodies; a check request carries every record inline.
const maxBodyBytes = 10 << 20

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	service.Store
	Ping(ctx context.Context) error

	CreateContact(ctx context.Context, c *types.Contact) error
	GetContact(ctx context.Context, agencyID, contactID uuid.UUID) (*types.Contact, error)
	DeleteContact(ctx context.Context, agencyID, contactID uuid.UUID) error

	GetScan(ctx context.Context, agencyID, scanID uuid.UUID) (*db.Scan, error)
	ListScans(ctx context.Context, filters db.ScanFilters) ([]db.Scan, error)
	DeleteScan(ctx context.Context, agencyID, scanID uuid.UUID) error

	CreateDismissal(ctx context.Context, d *db.Dismissal) error
	ListDismissals(ctx context.Context, agencyID uuid.UUID) ([]db.Dismissal, error)
	DeleteDismissal(ctx context.Context, agencyID, dismissalID uuid.UUID) error
}

var _ Store = (*db.DB)(nil)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	scanner     *service.Scanner
	rateLimiter *ratelimit.Limiter
	tokens      middleware.TokenValidator
	closeStore  func()
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	// Detection holds the defaults for requests that leave options unset.
	Detection dedup.Options
}

// New connects to the database and creates a server. JWT_SECRET must be set.
func New(cfg Config) (*Server, error) {
	authConfig, err := config.NewAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create auth config: %w", err)
	}

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := newServer(cfg, database, NewTokenVerifier(authConfig).AsTokenValidator(),
		ratelimit.NewLimiter(ratelimit.LoadConfig()))
	s.closeStore = database.Close
	return s, nil
}

func newServer(cfg Config, store Store, tokens middleware.TokenValidator, limiter *ratelimit.Limiter) *Server {
	if cfg.Detection == (dedup.Options{}) {
		cfg.Detection = dedup.DefaultOptions()
	}

	s := &Server{
		store:       store,
		scanner:     service.NewScanner(store, cfg.Detection),
		rateLimiter: limiter,
		tokens:      tokens,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // scans over large agencies
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// routes builds the handler chain: rate limit, logging, CORS, then auth for
// everything except /health and /metrics.
func (s *Server) routes() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /duplicates/check", s.handleCheckDuplicates)

	api.HandleFunc("POST /scans", s.handleCreateScan)
	api.HandleFunc("GET /scans", s.handleListScans)
	api.HandleFunc("GET /scans/{id}", s.handleGetScan)
	api.HandleFunc("DELETE /scans/{id}", s.handleDeleteScan)

	api.HandleFunc("GET /contacts", s.handleListContacts)
	api.HandleFunc("POST /contacts", s.handleCreateContact)
	api.HandleFunc("GET /contacts/{id}", s.handleGetContact)
	api.HandleFunc("DELETE /contacts/{id}", s.handleDeleteContact)

	api.HandleFunc("POST /dismissals", s.handleCreateDismissal)
	api.HandleFunc("GET /dismissals", s.handleListDismissals)
	api.HandleFunc("DELETE /dismissals/{id}", s.handleDeleteDismissal)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", middleware.AuthMiddleware(s.tokens)(api))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their budget with 429
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d completed in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// handleHealth reports whether the database is reachable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code. Internal errors are logged and
// replaced with a generic message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeJSON decodes a size-limited request body into v
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return &ErrValidation{Message: "invalid request body"}
	}
	return nil
}

// agencyID returns the authenticated agency of the request
func (s *Server) agencyID(r *http.Request) (uuid.UUID, error) {
	id, err := middleware.GetAgencyID(r)
	if err != nil {
		return uuid.Nil, &ErrForbidden{Reason: err.Error()}
	}
	return id, nil
}

// pathID parses the {id} path value
func (s *Server) pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "invalid " + resource + " ID"}
	}
	return id, nil
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is ignored since the server does not know its proxies.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
