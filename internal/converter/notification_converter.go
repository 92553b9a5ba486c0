package converter

import (
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

func NotificationToResponse(n *entity.Notification) *dto.NotificationResponse {
	if n == nil {
		return nil
	}

	return &dto.NotificationResponse{
		ID:           n.ID,
		Title:        n.Title,
		Message:      n.Message,
		Type:         string(n.Type),
		Read:         n.Read,
		RelatedTable: n.RelatedTable,
		RelatedID:    n.RelatedID,
		CreatedAt:    n.CreatedAt,
	}
}

func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = *NotificationToResponse(&notifications[i])
	}
	return responses
}

// NotificationChangeToEvent converts a feed change into a stream frame.
func NotificationChangeToEvent(change entity.NotificationChange, unread int64) dto.NotificationEvent {
	return dto.NotificationEvent{
		Type:         string(change.Type),
		Notification: *NotificationToResponse(&change.Row),
		Unread:       unread,
		At:           change.At,
	}
}
