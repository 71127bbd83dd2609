package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierswitch/tierswitch/scaler"
	"github.com/tierswitch/tierswitch/scaler/fleet"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.PanicLevel)
	}
	os.Exit(m.Run())
}

// stubFleet serves every tier from a shared state map keyed by the first
// instance ID; unknown instances report stopped.
type stubFleet struct {
	mu       sync.Mutex
	states   map[string]fleet.InstanceState
	describe error
}

func newStubFleet() *stubFleet {
	return &stubFleet{states: make(map[string]fleet.InstanceState)}
}

func (s *stubFleet) DescribeState(_ context.Context, ids []string) (fleet.InstanceState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.describe != nil {
		return fleet.StateUnknown, s.describe
	}
	if st, ok := s.states[ids[0]]; ok {
		return st, nil
	}
	return fleet.StateStopped, nil
}

func (s *stubFleet) Start(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ids[0]] = fleet.StateRunning
	return nil
}

func (s *stubFleet) Stop(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ids[0]] = fleet.StateStopped
	return nil
}

func newTestServer(sf *stubFleet) *Server {
	cfg := scaler.DefaultConfig()
	cfg.Tiers = []scaler.Tier{
		{Name: "small", InstanceIDs: []string{"i-small"}},
		{Name: "medium", InstanceIDs: []string{"i-medium"}},
		{Name: "large", InstanceIDs: []string{"i-large"}},
	}
	cfg.Cooldown = scaler.Duration(10 * time.Second)
	return New(scaler.NewController(cfg, sf))
}

func TestSendRequest_Success(t *testing.T) {
	// GIVEN a server over an all-stopped fleet
	srv := newTestServer(newStubFleet())

	// WHEN a traffic event is posted
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send_request", nil))

	// THEN the decision is returned in the original wire format
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status      string  `json:"status"`
		TargetGroup string  `json:"target_group"`
		ArrivalRate float64 `json:"arrival_rate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "small", body.TargetGroup)
	assert.Equal(t, 0.0, body.ArrivalRate)
}

func TestSendRequest_WrongMethod(t *testing.T) {
	srv := newTestServer(newStubFleet())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/send_request", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSendRequest_FleetFailure_Returns500(t *testing.T) {
	// GIVEN a fleet controller that cannot be reached
	sf := newStubFleet()
	sf.describe = errors.New("api unreachable")
	srv := newTestServer(sf)

	// WHEN a traffic event is posted
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send_request", nil))

	// THEN the failure surfaces as an error response
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.NotEmpty(t, body.Message)
}

func TestGetMetrics_ReportsActiveGroups(t *testing.T) {
	// GIVEN a fleet with the medium tier running
	sf := newStubFleet()
	sf.states["i-medium"] = fleet.StateRunning
	srv := newTestServer(sf)

	// WHEN metrics are queried
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_metrics", nil))

	// THEN the running tier is reported with the current rate
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		ActiveGroups []string `json:"active_groups"`
		ArrivalRate  float64  `json:"arrival_rate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"medium"}, body.ActiveGroups)
	assert.Equal(t, 0.0, body.ArrivalRate)
}

func TestGetMetrics_WrongMethod(t *testing.T) {
	srv := newTestServer(newStubFleet())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/get_metrics", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(newStubFleet())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpoint_Serves(t *testing.T) {
	srv := newTestServer(newStubFleet())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
