package middleware

import (
	"net/http"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/pkg/response"
)

// RequireRole rejects callers whose token role is not one of roles.
// Role is read from the actor set by AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, role := range roles {
				if actor.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequireFrontDesk admits secretaries and admins.
func RequireFrontDesk(next http.Handler) http.Handler {
	return RequireRole(entity.RoleSecretary, entity.RoleAdmin)(next)
}
