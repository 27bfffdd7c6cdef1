// Package http exposes the fuel log as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/wdkapps/fillup/internal/cache"
	"github.com/wdkapps/fillup/internal/core"
	"github.com/wdkapps/fillup/internal/services"
)

type Server struct {
	http.Server
	service     *services.FuelLogService
	rateLimiter *rateLimiter

	// read caches; invalidated on every write to the owning vehicle
	recordsCache *cache.LRUCache[[]*core.RefuelRecord]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, service *services.FuelLogService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:      service,
		rateLimiter:  newRateLimiter(),
		recordsCache: cache.NewLRUCache[[]*core.RefuelRecord](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.recordsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/settings", s.withCommon(s.handleSettings))

	mux.HandleFunc("GET /api/vehicles", s.withCommon(s.handleListVehicles))
	mux.HandleFunc("POST /api/vehicles", s.withCommon(s.handleCreateVehicle))
	mux.HandleFunc("PUT /api/vehicles/{id}", s.withCommon(s.handleUpdateVehicle))
	mux.HandleFunc("DELETE /api/vehicles/{id}", s.withCommon(s.handleDeleteVehicle))

	mux.HandleFunc("GET /api/vehicles/{id}/records", s.withCommon(s.handleListRecords))
	mux.HandleFunc("POST /api/vehicles/{id}/records", s.withCommon(s.handleCreateRecord))
	mux.HandleFunc("PUT /api/vehicles/{id}/records/{rid}", s.withCommon(s.handleUpdateRecord))
	mux.HandleFunc("DELETE /api/vehicles/{id}/records/{rid}", s.withCommon(s.handleDeleteRecord))
	mux.HandleFunc("GET /api/vehicles/{id}/records/{rid}/estimate", s.withCommon(s.handleEstimate))

	mux.HandleFunc("GET /api/vehicles/{id}/monthly", s.withCommon(s.handleMonthly))
	mux.HandleFunc("GET /api/vehicles/{id}/report", s.withCommon(s.handleReport))
	mux.HandleFunc("GET /api/vehicles/{id}/export", s.withCommon(s.handleExport))
	mux.HandleFunc("POST /api/vehicles/{id}/import", s.withCommon(s.handleImport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withCommon adds security headers, rate limiting, and request logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// rate-limit writes only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) recordsCacheKey(vehicleID int64) string {
	return "records-" + strconv.FormatInt(vehicleID, 10)
}

// invalidateVehicle drops every cached view of one vehicle.
func (s *Server) invalidateVehicle(vehicleID int64) {
	s.recordsCache.DeletePrefix(s.recordsCacheKey(vehicleID))
}

// cachedRecords returns the vehicle's records with mileage attached,
// serving repeat reads from the LRU cache.
func (s *Server) cachedRecords(ctx context.Context, vehicleID int64) ([]*core.RefuelRecord, error) {
	key := s.recordsCacheKey(vehicleID)
	if records, found := s.recordsCache.Get(key); found {
		slog.DebugContext(ctx, "Records cache hit", "vehicle_id", vehicleID, "count", len(records))
		return records, nil
	}

	records, err := s.service.Records(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	s.recordsCache.Set(key, records)
	return records, nil
}
