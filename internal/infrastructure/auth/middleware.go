package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/honeynil/PetAdoptService/internal/access"
	"github.com/honeynil/PetAdoptService/internal/infrastructure/redis"
)

// AuthMiddleware resolves the bearer token into an access.Actor. Requests without
// an Authorization header pass through anonymously; handlers decide whether that is enough.
func AuthMiddleware(redisClient redis.RedisClient, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization header")
				return
			}

			tokenStr := strings.TrimSpace(parts[1])
			claims, err := ValidateJWT(jwtSecret, tokenStr)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			// Check token in Redis
			storedToken, err := redisClient.Get(r.Context(), redis.TokenKey(claims.UserID))
			if err != nil || storedToken != tokenStr {
				slog.Warn("invalid or revoked token", "user_id", claims.UserID, "error", err)
				unauthorized(w, "invalid or revoked token")
				return
			}

			ctx := access.WithActor(r.Context(), access.Actor{UserID: claims.UserID, IsStaff: claims.IsStaff})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
