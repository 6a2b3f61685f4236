package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/service"
	"clinic-booking-api/pkg/jwt"
	"clinic-booking-api/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	CallerKey  contextKey = "caller"
	TokenIDKey contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokenStore service.TokenStore
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokenStore service.TokenStore, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		exists, err := m.tokenStore.AccessExists(r.Context(), claims.UserID, claims.TokenID)
		if err != nil {
			m.log.Warnf("Failed to check access token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !exists {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		caller := entity.Caller{
			UserID: claims.UserID,
			Email:  claims.Email,
			RoleID: claims.RoleID,
		}
		ctx := context.WithValue(r.Context(), CallerKey, caller)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the authenticated caller. The zero Caller is
// returned for anonymous requests.
func CallerFromContext(ctx context.Context) (entity.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(entity.Caller)
	return caller, ok
}

// WithCaller attaches caller to ctx the way Authenticate does.
func WithCaller(ctx context.Context, caller entity.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
