package handler

import (
	"net/http"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"
)

type DeletionRequestHandler struct {
	deletionUsecase usecase.DeletionRequestUsecase
}

func NewDeletionRequestHandler(deletionUsecase usecase.DeletionRequestUsecase) *DeletionRequestHandler {
	return &DeletionRequestHandler{deletionUsecase: deletionUsecase}
}

func (h *DeletionRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateDeletionRequestRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	created, err := h.deletionUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Deletion request submitted", created)
}

func (h *DeletionRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	requests, err := h.deletionUsecase.List(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Deletion requests retrieved successfully", requests)
}

func (h *DeletionRequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "deletion request")
	if !ok {
		return
	}

	var req dto.ReviewDeletionRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reviewed, err := h.deletionUsecase.Review(r.Context(), actor, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Deletion request reviewed", reviewed)
}
