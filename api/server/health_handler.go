// health_handler.go - HTTP handlers for /health/*, /nodehealth and /status
package server

import (
	"net/http"

	"medledger/core/scan"
)

// NodeLiveness is true while the process can serve requests.
func (s *Server) NodeLiveness() bool {
	return true
}

// NodeReadiness is true when the chain artifact can be parsed. The corrupt
// policy is not applied, so a fail-open ledger still reports corruption here.
func (s *Server) NodeReadiness() (bool, string) {
	if err := s.ledger.Readable(); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// HandleLiveness responds to /health/liveness
func (s *Server) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{Alive: s.NodeLiveness()})
}

// HandleReadiness responds to /health/readiness
func (s *Server) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ready, reason := s.NodeReadiness()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, ReadinessResponse{Ready: ready, Reason: reason})
}

func healthStatus(m NodeMetrics) string {
	switch {
	case !m.ChainReadable:
		return "degraded"
	case m.BlockCount == 0:
		return "initializing"
	}
	return "healthy"
}

// HandleNodeHealth responds to /nodehealth (summary health)
func (s *Server) HandleNodeHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()
	writeJSON(w, http.StatusOK, NodeHealthResponse{Status: healthStatus(metrics), Metrics: metrics})
}

// HandleStatus responds to /status with node status and chain validity.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	metrics := s.GetNodeMetrics()
	// Polled by monitors: verify the snapshot without writing audit entries.
	blocks, err := s.ledger.Blocks()
	valid := err == nil && scan.Verify(blocks).Valid
	status := healthStatus(metrics)
	if err == nil && !valid {
		status = "tampered"
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:     status,
		Uptime:     metrics.UptimeSeconds,
		BlockCount: metrics.BlockCount,
		ChainValid: valid,
		Version:    NodeVersion(),
		APIVersion: APIVersion(),
		LastBlock:  metrics.LastBlockTime,
		Metrics:    metrics,
	})
}
