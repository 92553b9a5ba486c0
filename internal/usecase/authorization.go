package usecase

import (
	"fmt"
	"strings"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/pkg/apperror"

	"github.com/google/uuid"
)

// sideEffectTimeout bounds each post-commit side effect (audit, event, notification).
const sideEffectTimeout = 5 * time.Second

// requireRole fails with a permission error unless actor holds one of roles.
func requireRole(op string, actor entity.Actor, roles ...string) error {
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperror.Permission(op, fmt.Sprintf("role %q may not %s; requires one of: %s", actor.Role, op, strings.Join(roles, ", ")))
}

func requireFrontDesk(op string, actor entity.Actor) error {
	return requireRole(op, actor, entity.RoleAdmin, entity.RoleSecretary)
}

// requireIdentity rejects actors without an email, since every inbox is keyed by address.
func requireIdentity(op string, actor entity.Actor) error {
	if actor.Email == "" {
		return apperror.Permission(op, "caller has no email identity")
	}
	return nil
}

func actorUserID(actor entity.Actor) *uuid.UUID {
	if actor.ID == uuid.Nil {
		return nil
	}
	id := actor.ID
	return &id
}
