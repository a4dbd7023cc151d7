package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"medledger/core/block"
	"medledger/core/chain"
	"medledger/core/notify"
	"medledger/core/scan"
	"medledger/core/storage"
	"medledger/core/validation"
	"medledger/types/ids"
)

const maxRequestBody = 64 << 10

// AddRecordResponse is returned by POST /api/records. Committed is false
// when the hash was computed but the chain could not be saved; such a hash
// must not be stored by the caller as a reference to a durable record.
type AddRecordResponse struct {
	Hash      string `json:"hash,omitempty"`
	Committed bool   `json:"committed"`
	Error     string `json:"error,omitempty"`
}

type TamperReport struct {
	Tampered bool           `json:"tampered"`
	Findings []scan.Finding `json:"findings"`
}

type ExportRequest struct {
	Destination string `json:"destination"`
}

type ExportResponse struct {
	Path string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterLedgerAPI mounts the ledger routes on mux.
func RegisterLedgerAPI(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("POST /api/records", s.AddRecordHandler)
	mux.HandleFunc("GET /api/records", s.RecentRecordsHandler)
	mux.HandleFunc("GET /api/records/{hash}", s.RecordByHashHandler)
	mux.HandleFunc("GET /api/patients/{id}/records", s.PatientRecordsHandler)
	mux.HandleFunc("GET /api/doctors/{id}/records", s.DoctorRecordsHandler)
	mux.HandleFunc("GET /api/chain/verify", s.VerifyHandler)
	mux.HandleFunc("GET /api/chain/tampering", s.TamperingHandler)
	mux.HandleFunc("GET /api/chain/stats", s.StatsHandler)
	mux.HandleFunc("POST /api/chain/export", s.ExportHandler)
	mux.HandleFunc("POST /api/chain/rollback", s.RollbackHandler)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeLedgerError maps ledger and storage failures to status codes.
func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, chain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrNoBackup):
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", requestID(r)).Error("ledger operation failed")
	}
	writeError(w, status, err.Error())
}

// AddRecordHandler appends one treatment record for the web workflow.
func (s *Server) AddRecordHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	req, err := validation.ValidateRecordRequest(body)
	if err != nil {
		s.log.WithError(err).WithField("request_id", requestID(r)).Info("record request rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := s.ledger.AddRecord(req.PatientID, req.DoctorID, req.Treatment)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, AddRecordResponse{Hash: hash, Committed: true})
	case errors.Is(err, chain.ErrNotCommitted):
		s.log.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID(r),
			"hash":       hash,
		}).Error("record computed but not committed")
		s.notifier.Notify(notify.NotCommittedAlert(hash, err))
		writeJSON(w, http.StatusServiceUnavailable, AddRecordResponse{Hash: hash, Committed: false, Error: err.Error()})
	default:
		s.writeLedgerError(w, r, err)
	}
}

// RecentRecordsHandler serves GET /api/records?limit=n.
func (s *Server) RecentRecordsHandler(w http.ResponseWriter, r *http.Request) {
	limit := chain.DefaultRecentCount
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := s.ledger.GetRecentRecords(limit)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) RecordByHashHandler(w http.ResponseWriter, r *http.Request) {
	hash := r.PathValue("hash")
	if _, err := ids.FromString(hash); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.ledger.GetRecordByHash(hash)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) PatientRecordsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeRecords(w, r, s.ledger.GetPatientRecords, r.PathValue("id"))
}

func (s *Server) DoctorRecordsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeRecords(w, r, s.ledger.GetDoctorRecords, r.PathValue("id"))
}

func (s *Server) writeRecords(w http.ResponseWriter, r *http.Request, query func(string) ([]block.Block, error), id string) {
	recs, err := query(id)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.ledger.Verify()
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) TamperingHandler(w http.ResponseWriter, r *http.Request) {
	findings, err := s.ledger.DetectTampering()
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	for _, alert := range notify.TamperAlerts(findings) {
		s.notifier.Notify(alert)
	}
	writeJSON(w, http.StatusOK, TamperReport{Tampered: len(findings) > 0, Findings: findings})
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.GetChainStats()
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportHandler writes an audit copy into the configured export directory.
// The destination is a relative name; paths escaping the directory are refused.
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Destination == "" || !filepath.IsLocal(req.Destination) {
		writeError(w, http.StatusBadRequest, "destination must be a relative path inside the export directory")
		return
	}
	dest := filepath.Join(s.cfg.ExportDir(), req.Destination)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	if err := s.ledger.ExportChain(dest); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Path: dest})
}

func (s *Server) RollbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RollbackToBackup(); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	res, err := s.ledger.Verify()
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
