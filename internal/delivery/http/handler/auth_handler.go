package handler

import (
	"net/http"
	"time"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/http/middleware"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/response"

	"github.com/sirupsen/logrus"
)

// AuthHandler serves the identity endpoints. Tokens are issued by the clinic's
// identity provider, so only introspection and revocation live here.
type AuthHandler struct {
	denylist service.TokenDenylist
	now      func() time.Time
	log      *logrus.Logger
}

func NewAuthHandler(denylist service.TokenDenylist, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		denylist: denylist,
		now:      time.Now,
		log:      log,
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	var ttl time.Duration
	if exp, ok := middleware.GetTokenExpiryFromContext(r.Context()); ok {
		ttl = exp.Sub(h.now())
	}

	if err := h.denylist.Revoke(r.Context(), tokenID, ttl); err != nil {
		h.log.Warnf("Failed to revoke token %s: %+v", tokenID, err)
		response.InternalServerError(w, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	expiresAt, _ := middleware.GetTokenExpiryFromContext(r.Context())
	response.Success(w, http.StatusOK, "User retrieved successfully", converter.ActorToMeResponse(actor, expiresAt))
}
