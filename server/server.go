// Package server is the HTTP shell around the control loop: it turns
// inbound traffic into decision cycles and exposes the status view.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/tierswitch/tierswitch/scaler"
)

// shutdownTimeout bounds connection draining after the serve context is
// cancelled.
const shutdownTimeout = 5 * time.Second

// Server routes the HTTP surface to the controller.
type Server struct {
	controller *scaler.Controller
	mux        *http.ServeMux
}

// New builds the HTTP surface for a controller.
func New(c *scaler.Controller) *Server {
	s := &Server{
		controller: c,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/send_request", s.handleSendRequest)
	s.mux.HandleFunc("/get_metrics", s.handleGetMetrics)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.Handle("/metrics", promhttp.Handler())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logrus.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type sendRequestResponse struct {
	Status      string  `json:"status"`
	TargetGroup string  `json:"target_group"`
	ArrivalRate float64 `json:"arrival_rate"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type metricsResponse struct {
	ActiveGroups []string `json:"active_groups"`
	ArrivalRate  float64  `json:"arrival_rate"`
}

// handleSendRequest triggers one decision cycle per inbound request.
func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dec, err := s.controller.HandleArrival(r.Context())
	if err != nil {
		logrus.Errorf("request handling failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, sendRequestResponse{
		Status:      "success",
		TargetGroup: dec.Target,
		ArrivalRate: round2(dec.ArrivalRate),
	})
}

// handleGetMetrics serves the status view: active tiers plus the current
// arrival rate, without recording an arrival.
func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.controller.Status(r.Context())
	writeJSON(w, http.StatusOK, metricsResponse{
		ActiveGroups: st.ActiveTiers,
		ArrivalRate:  round2(st.ArrivalRate),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("failed to encode response: %v", err)
	}
}

// round2 rounds to two decimals for the wire format.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
