package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	httpSwagger "github.com/swaggo/http-swagger"

	payoutengine "peerbonus/contexts/award-core/payout-engine"
	voteledger "peerbonus/contexts/award-core/vote-ledger"
	"peerbonus/internal/platform/metrics"

	_ "peerbonus/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ledger  voteledger.Module
	payout  payoutengine.Module
	metrics *metrics.Metrics
}

func New(
	ledger voteledger.Module,
	payout payoutengine.Module,
	m *metrics.Metrics,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ledger:  ledger,
		payout:  payout,
		metrics: m,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, used by httptest in server tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.handle("POST /api/v1/sessions", "create_session", s.handleCreateSession)
	s.handle("GET /api/v1/sessions/{id}", "get_session", s.handleGetSession)
	s.handle("POST /api/v1/sessions/{id}/close", "close_session", s.handleCloseSession)
	s.handle("PUT /api/v1/sessions/{id}/pool", "set_pool", s.handleSetPoolParameters)
	s.handle("POST /api/v1/sessions/{id}/participants", "enroll_participant", s.handleEnrollParticipant)
	s.handle("GET /api/v1/sessions/{id}/participants", "list_participants", s.handleListParticipants)
	s.handle("GET /api/v1/sessions/{id}/stats", "session_stats", s.handleSessionStats)
	s.handle("POST /api/v1/votes", "cast_votes", s.handleCastVotes)

	s.handle("POST /api/v1/sessions/{id}/recalculate", "recalculate", s.handleRecalculate)
	s.handle("GET /api/v1/sessions/{id}/results", "get_results", s.handleGetResults)
}

// handle instruments a route with the request counter.
func (s *Server) handle(pattern string, route string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
