package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/session"
)

const UserHeader = "X-User-ID"

// Session identifica o usuário por X-User-ID ou Authorization: Bearer <user>
// e injeta a sessão no context. Sem identidade: 401.
func Session(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := userFromRequest(r)
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Sessão ausente"})
				return
			}

			s := registry.Open(userID)
			defer registry.Release(s)

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

func userFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
		return id
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
