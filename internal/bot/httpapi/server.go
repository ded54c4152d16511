// Package httpapi serves the operational HTTP surface: health, Prometheus
// metrics and a token-protected read-only admin API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/tokenbot/internal/bot/models"
	"github.com/dmitrijs2005/tokenbot/internal/bot/observability"
	"github.com/dmitrijs2005/tokenbot/internal/common"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Users is the read side of the user service.
type Users interface {
	IsAdmin(userID int64) bool
	Stats(ctx context.Context, userID int64) (*models.UserStats, error)
	Totals(ctx context.Context) (*models.Totals, error)
}

// SessionCounter reports the number of conversations in progress.
type SessionCounter interface {
	ActiveCount() int
}

type Server struct {
	address   string
	users     Users
	sessions  SessionCounter
	metrics   *observability.Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func New(address string, users Users, sessions SessionCounter, metrics *observability.Metrics, logger logging.Logger, secretKey string) *Server {
	return &Server{
		address:   address,
		users:     users,
		sessions:  sessions,
		metrics:   metrics,
		logger:    logger.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	// No secret, no admin API.
	if len(s.jwtSecret) > 0 {
		r.Route("/api", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/stats", s.handleTotals)
			r.Get("/users/{id}", s.handleUserStats)
		})
	}

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type healthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.sessions != nil {
		resp.ActiveSessions = s.sessions.ActiveCount()
	}
	respondJSON(w, http.StatusOK, resp)
}

type totalsResponse struct {
	Users    int64 `json:"users"`
	Accounts int64 `json:"accounts"`
	Refunds  int64 `json:"refunds"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	t, err := s.users.Totals(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "totals failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	respondJSON(w, http.StatusOK, totalsResponse{Users: t.Users, Accounts: t.Accounts, Refunds: t.Refunds})
}

type userStatsResponse struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Authorized   bool      `json:"authorized"`
	AccountCount int64     `json:"account_count"`
	RefundCount  int64     `json:"refund_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user id must be a number")
		return
	}

	adminID, _ := AdminID(r.Context())
	s.logger.Debug(r.Context(), "user stats lookup", "admin_id", adminID, "user_id", id)

	st, err := s.users.Stats(r.Context(), id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", "user not found")
		return
	case err != nil:
		s.logger.Error(r.Context(), "user stats failed", "user_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	respondJSON(w, http.StatusOK, userStatsResponse{
		ID:           st.User.ID,
		Username:     st.User.UserName,
		Authorized:   st.User.Authorized,
		AccountCount: st.AccountCount,
		RefundCount:  st.RefundCount,
		CreatedAt:    st.User.CreatedAt,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
