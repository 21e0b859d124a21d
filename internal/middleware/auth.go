package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/adaudit/adaudit-api/internal/config"
)

// contextKey is a custom type for context keys.
type contextKey string

const (
	// UserIDContextKey carries the authenticated subject claim.
	UserIDContextKey contextKey = "user_id"

	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
	errExpiredToken = "token has expired"
)

// AuthMiddleware validates JWT bearer tokens.
type AuthMiddleware struct {
	cfg    config.AuthConfig
	logger *zap.Logger
}

func NewAuthMiddleware(cfg config.AuthConfig, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg, logger: logger}
}

func (a *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		if a.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		rawToken, ok := extractBearerToken(r.Header.Get("Authorization"))
		if !ok {
			// Query param fallback for EventSource clients, which cannot
			// set headers.
			rawToken = r.URL.Query().Get("token")
			if rawToken == "" {
				a.unauthorized(w, errMissingToken)
				return
			}
		}

		claims, err := a.parseClaims(rawToken)
		if err != nil {
			a.logger.Warn("rejected token",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			if errors.Is(err, jwt.ErrTokenExpired) {
				a.unauthorized(w, errExpiredToken)
			} else {
				a.unauthorized(w, errInvalidToken)
			}
			return
		}

		sub, _ := claims["sub"].(string)
		ctx := context.WithValue(r.Context(), UserIDContextKey, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) shouldSkip(path string) bool {
	for _, skip := range a.cfg.SkipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

func (a *AuthMiddleware) parseClaims(rawToken string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(a.cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New(errInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New(errInvalidToken)
	}
	return claims, nil
}

func (a *AuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized, message)
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}
