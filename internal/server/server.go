// Package server exposes the mining service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"solay-backend/internal/mining"
	"solay-backend/internal/observability"
)

// Denial messages served to clients, keyed by outcome.
const (
	msgNoHolding      = "You do not hold SOLAY39."
	msgLimitReached   = "Daily mining limit reached."
	msgTransferFailed = "Token transfer failed."
)

// Server handles the public API.
type Server struct {
	orch   *mining.Orchestrator
	logger *log.Logger
}

// New creates an API server around the orchestrator.
func New(orch *mining.Orchestrator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{orch: orch, logger: logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/user_info", s.instrument("/api/user_info", s.handleUserInfo))
	mux.HandleFunc("/api/mine", s.instrument("/api/mine", s.handleMine))
	mux.HandleFunc("/api/history", s.instrument("/api/history", s.handleHistory))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with request counting and latency metrics.
func (s *Server) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		observability.DefaultMetrics.HTTPRequests.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		observability.DefaultMetrics.HTTPRequestLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleUserInfo serves GET /api/user_info?wallet=<address>.
func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "Missing wallet address")
		return
	}

	info, err := s.orch.UserInfo(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, mining.ErrInvalidWallet) {
			writeError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		s.logger.Printf("[server] user_info failed for %s: %v", wallet, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

type mineRequest struct {
	Wallet string `json:"wallet"`
}

type mineResponse struct {
	Success bool    `json:"success"`
	Reward  float64 `json:"reward,omitempty"`
	Tx      string  `json:"tx,omitempty"`
	Message string  `json:"message,omitempty"`
}

// handleMine serves POST /api/mine with body {"wallet": "<address>"}.
func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req mineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Wallet == "" {
		writeError(w, http.StatusBadRequest, "Missing wallet address")
		return
	}

	res, err := s.orch.Mine(r.Context(), req.Wallet)
	if err != nil {
		if errors.Is(err, mining.ErrInvalidWallet) {
			writeError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		s.logger.Printf("[server] mine failed for %s: %v", req.Wallet, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch res.Outcome {
	case mining.OutcomeGranted:
		writeJSON(w, http.StatusOK, mineResponse{Success: true, Reward: res.Reward, Tx: res.Tx})
	case mining.OutcomeInsufficientHolding:
		writeJSON(w, http.StatusOK, mineResponse{Success: false, Message: msgNoHolding})
	case mining.OutcomeQuotaExceeded:
		writeJSON(w, http.StatusOK, mineResponse{Success: false, Message: msgLimitReached})
	default:
		writeJSON(w, http.StatusOK, mineResponse{Success: false, Message: msgTransferFailed})
	}
}

type historyEntry struct {
	Amount    float64   `json:"amount"`
	Tx        string    `json:"tx"`
	CreatedAt time.Time `json:"created_at"`
}

// handleHistory serves GET /api/history?wallet=<address>.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	wallet := r.URL.Query().Get("wallet")
	if wallet == "" {
		writeError(w, http.StatusBadRequest, "Missing wallet address")
		return
	}

	entries, err := s.orch.History(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, mining.ErrInvalidWallet) {
			writeError(w, http.StatusBadRequest, "Invalid wallet address")
			return
		}
		s.logger.Printf("[server] history failed for %s: %v", wallet, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{Amount: e.Amount, Tx: e.Tx, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}
