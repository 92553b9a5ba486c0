package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/jwt"
	"clinic-workflow/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	ActorKey    contextKey = "actor"
	TokenIDKey  contextKey = "token_id"
	TokenExpKey contextKey = "token_expires_at"
)

const queryTokenParam = "access_token"

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	denylist   service.TokenDenylist
	log        *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, denylist service.TokenDenylist, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		denylist:   denylist,
		log:        log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		revoked, err := m.denylist.IsRevoked(r.Context(), claims.TokenID)
		if err != nil {
			m.log.Warnf("Failed to check token denylist: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if revoked {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		actor := entity.Actor{
			ID:    claims.UserID,
			Email: strings.ToLower(claims.Email),
			Role:  claims.Role,
		}
		ctx := context.WithValue(r.Context(), ActorKey, actor)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
		if claims.ExpiresAt != nil {
			ctx = context.WithValue(ctx, TokenExpKey, claims.ExpiresAt.Time)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set headers
// on a websocket handshake, so the access_token query parameter is accepted too.
func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := r.URL.Query().Get(queryTokenParam); token != "" {
		return token, true
	}
	return "", false
}

// GetActor extracts the authenticated caller from context
func GetActor(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	return actor, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

func GetTokenExpiryFromContext(ctx context.Context) (time.Time, bool) {
	exp, ok := ctx.Value(TokenExpKey).(time.Time)
	return exp, ok
}
