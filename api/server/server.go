package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medledger/core/chain"
	"medledger/core/config"
	"medledger/core/notify"
)

// RequestIDHeader carries the per-request UUID on every response.
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

type Server struct {
	ledger     *chain.Ledger
	cfg        *config.Config
	log        logrus.FieldLogger
	notifier   notify.Notifier
	ListenAddr string
	startTime  time.Time
	httpServer *http.Server
}

func NewServer(ledger *chain.Ledger, cfg *config.Config, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		ledger:     ledger,
		cfg:        cfg,
		log:        logger.WithField("module", "api"),
		notifier:   notify.NewLogNotifier(logger, string(notify.NotifyAdmin)),
		ListenAddr: cfg.API.Listen,
		startTime:  time.Now(),
	}
}

// SetNotifier replaces the default log-based alert sink.
func (s *Server) SetNotifier(n notify.Notifier) {
	s.notifier = n
}

// Handler returns the full route table wrapped in request-id and access-log
// middleware. Ledger routes additionally pass through bearer-token auth.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	RegisterLedgerAPI(api, s)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.authMiddleware(api))
	// health/status endpoints stay open for probes
	mux.HandleFunc("GET /nodehealth", s.HandleNodeHealth)
	mux.HandleFunc("GET /health/liveness", s.HandleLiveness)
	mux.HandleFunc("GET /health/readiness", s.HandleReadiness)
	mux.HandleFunc("GET /status", s.HandleStatus)

	return s.requestIDMiddleware(s.accessLogMiddleware(mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.API.ReadTimeout,
		WriteTimeout: s.cfg.API.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.API.EnableHTTPS {
			s.log.WithField("cert", s.cfg.API.TLSCert).Info("HTTPS enabled")
			err = s.httpServer.ListenAndServeTLS(s.cfg.API.TLSCert, s.cfg.API.TLSKey)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		errCh <- err
	}()
	s.log.WithField("addr", s.ListenAddr).Info("API server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("API server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"request_id": requestID(r),
			"elapsed":    time.Since(start).String(),
		}).Debug("request served")
	})
}

// authMiddleware requires an HS256 bearer token signed with api.jwt_secret.
// An empty secret disables the check.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	secret := []byte(s.cfg.API.JWTSecret)
	if len(secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			s.log.WithError(err).WithField("request_id", requestID(r)).Warn("rejected bearer token")
			writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
