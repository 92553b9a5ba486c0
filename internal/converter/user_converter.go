package converter

import (
	"time"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

// ActorToMeResponse describes the authenticated caller.
func ActorToMeResponse(actor entity.Actor, expiresAt time.Time) *dto.MeResponse {
	return &dto.MeResponse{
		ID:        actor.ID,
		Email:     actor.Email,
		Role:      actor.Role,
		ExpiresAt: expiresAt,
	}
}
