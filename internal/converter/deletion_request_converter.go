package converter

import (
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
)

func DeletionRequestToResponse(r *entity.DeletionRequest) *dto.DeletionRequestResponse {
	if r == nil {
		return nil
	}

	return &dto.DeletionRequestResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		UserEmail:  r.UserEmail,
		Reason:     r.Reason,
		Status:     string(r.Status),
		ReviewedBy: r.ReviewedBy,
		ReviewedAt: r.ReviewedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func DeletionRequestsToResponses(requests []entity.DeletionRequest) []dto.DeletionRequestResponse {
	responses := make([]dto.DeletionRequestResponse, len(requests))
	for i := range requests {
		responses[i] = *DeletionRequestToResponse(&requests[i])
	}
	return responses
}
