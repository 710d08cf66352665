package middleware

import (
	"context"
	"fmt"
	"net/http"

	"albaceo/globals"
	"albaceo/rdx"
	"albaceo/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
)

// sessionsHash is the Redis hash auth writes on login and clears on logout.
const sessionsHash = "sessions"

// JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		stored, lookupErr := rdx.RdxHget(r.Context(), sessionsHash, claims.UserID)
		if !SessionAccepts(stored, lookupErr, tokenString[7:]) {
			http.Error(w, "Session is no longer active", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireAdmin gates admin-only routes (product management, coupon creation,
// analytics). Must be chained after Authenticate.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if utils.GetRoleFromRequest(r) != "admin" {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next(w, r, ps)
	}
}

// SessionAccepts decides whether a validated JWT is still backed by a live
// session entry. A missing entry means the user logged out, so the token is
// rejected even though its signature and expiry are fine. When the cache
// itself is unreachable the JWT expiry remains the only bound; availability
// wins over immediate logout there.
func SessionAccepts(stored string, lookupErr error, token string) bool {
	if lookupErr == redis.Nil {
		return false
	}
	if lookupErr != nil {
		return true
	}
	return stored == token
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
		return nil, fmt.Errorf("invalid token format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return globals.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
