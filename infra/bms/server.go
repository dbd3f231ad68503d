package bms

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/automail/core/logger"
)

// ServerConfig configures the mock fee service.
type ServerConfig struct {
	Addr    string  `json:"addr"`
	Pricing Pricing `json:"pricing"`
	// FailureRate is the probability in [0,1] that a request is answered with
	// 503 Service Unavailable.
	FailureRate float64 `json:"failure_rate"`
	Seed        uint64  `json:"seed"`
}

// Server is a mock building management fee service.
type Server struct {
	cfg      ServerConfig
	log      logger.Logger
	registry *prometheus.Registry

	mu  sync.Mutex
	rng *rand.Rand

	requests *prometheus.CounterVec
}

// NewServer creates a mock server. Its metrics live on a private registry
// exposed at /metrics.
func NewServer(cfg ServerConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop{}
	}
	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bms_fee_requests_total",
		Help: "Fee lookups served by the mock BMS",
	}, []string{"outcome"})
	reg.MustRegister(requests)
	return &Server{
		cfg:      cfg,
		log:      log,
		registry: reg,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		requests: requests,
	}
}

// Handler returns the HTTP routes of the mock server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fees/{floor}", s.handleFee)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleFee(w http.ResponseWriter, r *http.Request) {
	floor, err := strconv.Atoi(r.PathValue("floor"))
	if err != nil {
		s.requests.WithLabelValues("bad_request").Inc()
		http.Error(w, "invalid floor", http.StatusBadRequest)
		return
	}
	if s.drop() {
		s.requests.WithLabelValues("dropped").Inc()
		s.log.Debugf("dropping fee request for floor %d", floor)
		http.Error(w, "modem unavailable", http.StatusServiceUnavailable)
		return
	}
	s.requests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(FeeResponse{Floor: floor, Fee: s.cfg.Pricing.Fee(floor)})
}

func (s *Server) drop() bool {
	if s.cfg.FailureRate <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.cfg.FailureRate
}

// ListenAndServe serves the mock until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("bms server shutdown: %v", err)
		}
	}()
	s.log.Infof("mock BMS listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
