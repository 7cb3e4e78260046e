package middleware

import (
	"context"
	"net/http"
	"strings"

	"pitstop/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

const StaffIDKey contextKey = "staff_id"

// StaffAuth verifies the bearer token issued by the authentication service
// and stores the staff principal in the request context. The workflow only
// needs an opaque identity; claims beyond the subject are ignored.
func StaffAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Warn("Rejected request with invalid staff token",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				unauthorized(w)
				return
			}

			staffID, err := token.Claims.GetSubject()
			if err != nil || staffID == "" {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), StaffIDKey, staffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffID returns the authenticated staff principal, if any.
func StaffID(ctx context.Context) string {
	if id, ok := ctx.Value(StaffIDKey).(string); ok {
		return id
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Missing or invalid staff credentials"}`))
}
