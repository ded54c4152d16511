package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/tokenbot/internal/bot/auth"
	"github.com/dmitrijs2005/tokenbot/internal/common"
)

type ctxKey string

const adminIDKey ctxKey = "adminID"

const requestIDHeader = "X-Request-Id"

// AdminID returns the id stored by requireAdmin.
func AdminID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminIDKey).(int64)
	return id, ok
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// requireAdmin accepts a bearer token whose subject is still on the admin
// allow-list. Removing an id from the list revokes its tokens.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(w, http.StatusUnauthorized, "missing_token", "missing token")
			return
		}

		adminID, err := auth.AdminIDFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, common.ErrTokenExpired) {
				code = "token_expired"
			}
			respondError(w, http.StatusUnauthorized, code, err.Error())
			return
		}

		if !s.users.IsAdmin(adminID) {
			s.logger.Info(r.Context(), "admin api access denied", "user_id", adminID)
			respondError(w, http.StatusForbidden, "forbidden", "access denied")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminIDKey, adminID)))
	})
}
