// Package server exposes the caller-facing HTTP API for the staking pool.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stakepool/internal/auth"
	"stakepool/internal/observability"
	"stakepool/internal/pool"
)

// CallerHeader carries the caller identity on every mutating or
// caller-scoped request.
const CallerHeader = "X-Caller-Id"

// Deps holds the collaborators the HTTP server needs.
type Deps struct {
	Ledger        *pool.Ledger
	Allowlist     *auth.Allowlist
	Operator      uuid.UUID
	HealthChecker *observability.HealthChecker
	Metrics       *observability.Metrics
	Logger        zerolog.Logger
}

// HTTPServer serves the staking pool's REST API.
type HTTPServer struct {
	addr string
	deps *Deps
	srv  *http.Server
}

func NewHTTPServer(addr string, deps *Deps) *HTTPServer {
	return &HTTPServer{addr: addr, deps: deps}
}

// Router builds the chi router. Exposed separately so tests can drive it
// with httptest without binding a port.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.deps.HealthChecker.LivenessHandler)
	r.Get("/readyz", s.deps.HealthChecker.ReadinessHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/stakes", s.instrument("deposit", s.handleDeposit))
		r.Post("/stakes/{index}/withdraw", s.instrument("withdraw", s.handleWithdraw))
		r.Get("/stakes", s.instrument("my_stakes", s.handleMyStakes))
		r.Get("/users/{id}/stakes", s.instrument("user_stakes", s.handleUserStakes))
		r.Get("/pool", s.instrument("pool_info", s.handlePoolInfo))
		r.Post("/authorized", s.instrument("authorize", s.handleAuthorize))
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutCtx)
	}()

	s.deps.Logger.Info().Str("addr", s.addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// instrument wraps a handler with per-route request metrics.
func (s *HTTPServer) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		h(ww, r)
		if s.deps.Metrics != nil {
			s.deps.Metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			s.deps.Metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	}
}

// --- Request/response bodies ---

type depositRequest struct {
	Amount         uint64 `json:"amount"`
	LockPeriodDays uint32 `json:"lock_period_days"`
}

type authorizeRequest struct {
	UserID string `json:"user_id"`
}

type errorBody struct {
	Code             string  `json:"code"`
	Message          string  `json:"message"`
	RemainingSeconds *uint64 `json:"remaining_seconds,omitempty"`
}

// --- Handlers ---

func (s *HTTPServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}

	receipt, err := s.deps.Ledger.Deposit(caller, req.Amount, req.LockPeriodDays)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

func (s *HTTPServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "stake index must be an integer", nil)
		return
	}

	receipt, err := s.deps.Ledger.Withdraw(caller, index)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

func (s *HTTPServer) handleMyStakes(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}

	book, found := s.deps.Ledger.GetMyStakes(caller)
	if !found {
		writeError(w, http.StatusNotFound, "NO_STAKES_FOUND", pool.ErrNoStakesFound.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (s *HTTPServer) handleUserStakes(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "user id must be a UUID", nil)
		return
	}

	book, found := s.deps.Ledger.GetUserStakes(userID)
	if !found {
		writeError(w, http.StatusNotFound, "NO_STAKES_FOUND", pool.ErrNoStakesFound.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (s *HTTPServer) handlePoolInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Ledger.PoolInfo())
}

// handleAuthorize adds a user to the allow-list. Only the operator may call it.
func (s *HTTPServer) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	if caller != s.deps.Operator {
		writeError(w, http.StatusForbidden, "NOT_AUTHORIZED", pool.ErrNotAuthorized.Error(), nil)
		return
	}

	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "user_id must be a UUID", nil)
		return
	}

	s.deps.Allowlist.Add(userID)
	s.deps.Logger.Info().Str("user_id", userID.String()).Msg("user authorized")
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (s *HTTPServer) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(CallerHeader)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CALLER", "X-Caller-Id header is required", nil)
		return uuid.Nil, false
	}
	caller, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_CALLER", "X-Caller-Id must be a UUID", nil)
		return uuid.Nil, false
	}
	return caller, true
}

// writeLedgerError maps ledger errors onto HTTP statuses and stable codes.
func (s *HTTPServer) writeLedgerError(w http.ResponseWriter, err error) {
	var locked *pool.LockedError
	switch {
	case errors.As(err, &locked):
		remaining := locked.RemainingSeconds
		writeError(w, http.StatusConflict, "STAKE_LOCKED", locked.Error(), &remaining)
	case errors.Is(err, pool.ErrInvalidLockPeriod):
		writeError(w, http.StatusBadRequest, "INVALID_LOCK_PERIOD", err.Error(), nil)
	case errors.Is(err, pool.ErrAmountTooSmall):
		writeError(w, http.StatusBadRequest, "AMOUNT_TOO_SMALL", err.Error(), nil)
	case errors.Is(err, pool.ErrInsufficientPoolBalance):
		writeError(w, http.StatusConflict, "INSUFFICIENT_POOL_BALANCE", err.Error(), nil)
	case errors.Is(err, pool.ErrNoStakesFound):
		writeError(w, http.StatusNotFound, "NO_STAKES_FOUND", err.Error(), nil)
	case errors.Is(err, pool.ErrInvalidStakeIndex):
		writeError(w, http.StatusNotFound, "INVALID_STAKE_INDEX", err.Error(), nil)
	case errors.Is(err, pool.ErrFeeExceedsAmount):
		writeError(w, http.StatusConflict, "FEE_EXCEEDS_AMOUNT", err.Error(), nil)
	case errors.Is(err, pool.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "NOT_AUTHORIZED", err.Error(), nil)
	default:
		s.deps.Logger.Error().Err(err).Msg("ledger operation failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, remaining *uint64) {
	writeJSON(w, status, errorBody{
		Code:             code,
		Message:          message,
		RemainingSeconds: remaining,
	})
}
