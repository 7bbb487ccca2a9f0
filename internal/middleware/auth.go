package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/neonmatrix/neonmatrix/internal/auth"
	"github.com/neonmatrix/neonmatrix/internal/store"
)

// RequireAuth validates the Authorization bearer token and stores the user id
// in the request context. A valid token whose user row no longer exists is
// treated the same as a missing token, so deleted accounts don't leak.
func RequireAuth(tokens *auth.TokenService, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Unauthorized")
				return
			}

			userID, err := tokens.Validate(token)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(userID)
			if err != nil || user == nil {
				unauthorized(w, "Unauthorized")
				return
			}

			ctx := auth.WithUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
