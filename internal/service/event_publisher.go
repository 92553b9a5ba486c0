package service

import (
	"context"

	"clinic-workflow/internal/domain/entity"
)

// EventPublisher emits status-changed events to downstream consumers.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event entity.StatusChangedEvent) error
	Close() error
}

type noopEventPublisher struct{}

// NewNoopEventPublisher is used when no broker is configured.
func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishStatusChanged(context.Context, entity.StatusChangedEvent) error {
	return nil
}

func (noopEventPublisher) Close() error {
	return nil
}
