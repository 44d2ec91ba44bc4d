// Package api exposes computed snapshots as read-only JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"NepseAnalyzer/internal/analysis"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/store"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the analyzer API.
type Server struct {
	Service *analysis.Service
	Metrics *metrics.Metrics
	// Checks are probed by /healthz, keyed by dependency name.
	Checks    map[string]Pinger
	StartedAt time.Time
}

// NewServer creates a Server for svc.
func NewServer(svc *analysis.Service, m *metrics.Metrics) *Server {
	return &Server{
		Service:   svc,
		Metrics:   m,
		Checks:    make(map[string]Pinger),
		StartedAt: time.Now(),
	}
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// Handler registers every route on a new mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /api/stocks", s.handleStocks)
	s.handle(mux, "GET /api/stocks/{symbol}", s.handleStock)
	s.handle(mux, "GET /api/stocks/{symbol}/prices", s.handlePrices)
	s.handle(mux, "GET /api/stocks/{symbol}/latest", s.handleLatest)
	s.handle(mux, "GET /api/stocks/{symbol}/indicators", s.handleIndicators)
	s.handle(mux, "GET /api/stocks/{symbol}/signals", s.handleSignals)
	s.handle(mux, "GET /api/stocks/{symbol}/overview", s.handleOverview)
	s.handle(mux, "GET /api/market/status", s.handleMarketStatus)
	s.handle(mux, "GET /api/market/movers", s.handleMovers)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type apiHandler func(w http.ResponseWriter, r *http.Request) (interface{}, error)

// handle wraps h with CORS, JSON encoding, error mapping and request metrics.
func (s *Server) handle(mux *http.ServeMux, pattern string, h apiHandler) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		code := http.StatusOK
		body, err := h(w, r)
		if err != nil {
			code = statusFor(err)
			if code == http.StatusInternalServerError {
				log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
			}
			body = map[string]string{"error": err.Error()}
		}
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("[WARN] encode response: %v", err)
		}
		if s.Metrics != nil {
			s.Metrics.Requests.WithLabelValues(pattern, strconv.Itoa(code)).Inc()
		}
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrNoData), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrBadInterval), errors.Is(err, analysis.ErrBadLimit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStocks(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.Service.Stocks(r.Context())
}

func (s *Server) handleStock(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.Service.Store.GetStock(r.Context(), r.PathValue("symbol"))
}

func (s *Server) handlePrices(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.Service.Prices(r.Context(), r.PathValue("symbol"))
}

func (s *Server) handleLatest(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	interval, err := analysis.ParseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		return nil, err
	}
	return s.Service.Latest(r.Context(), r.PathValue("symbol"), interval)
}

func (s *Server) handleIndicators(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	interval, err := analysis.ParseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		return nil, err
	}
	return s.Service.Indicators(r.Context(), r.PathValue("symbol"), interval)
}

func (s *Server) handleSignals(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.Service.Signals(r.Context(), r.PathValue("symbol"))
}

func (s *Server) handleOverview(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	return s.Service.Overview(r.Context(), r.PathValue("symbol"))
}

func (s *Server) handleMovers(_ http.ResponseWriter, r *http.Request) (interface{}, error) {
	limit, err := analysis.ParseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		return nil, err
	}
	return s.Service.Movers(r.Context(), limit)
}

func (s *Server) handleMarketStatus(_ http.ResponseWriter, _ *http.Request) (interface{}, error) {
	now := time.Now()
	status := "closed"
	if model.IsMarketOpen(now) {
		status = "open"
	}
	return map[string]interface{}{
		"market_status": status,
		"time":          now.In(model.NPT).Format(time.RFC3339),
		"open_hour":     model.SessionOpenHour,
		"close_hour":    model.SessionCloseHour,
	}, nil
}

// handleHealth probes every registered dependency.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string, len(s.Checks))
	status, code := "healthy", http.StatusOK
	for name, p := range s.Checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       status,
		"uptime":       time.Since(s.StartedAt).Round(time.Second).String(),
		"dependencies": deps,
	})
}
