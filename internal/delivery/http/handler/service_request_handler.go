package handler

import (
	"context"
	"net/http"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"
)

type ServiceRequestHandler struct {
	requestUsecase usecase.ServiceRequestUsecase
}

func NewServiceRequestHandler(requestUsecase usecase.ServiceRequestUsecase) *ServiceRequestHandler {
	return &ServiceRequestHandler{requestUsecase: requestUsecase}
}

func (h *ServiceRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateServiceRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.requestUsecase.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Service request created successfully", created)
}

func (h *ServiceRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := int64Var(w, r, "id", "service request")
	if !ok {
		return
	}

	request, err := h.requestUsecase.GetByID(r.Context(), actor, id, requestLocale(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service request retrieved successfully", request)
}

func (h *ServiceRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	requests, err := h.requestUsecase.ListMine(r.Context(), actor, requestLocale(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service requests retrieved successfully", requests)
}

type transitionFunc func(ctx context.Context, actor entity.Actor, id int64) (*dto.ServiceRequestResponse, error)

// transition serves the body-less state changes, which differ only in the usecase call.
func transition(message string, call transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := currentActor(w, r)
		if !ok {
			return
		}
		id, ok := int64Var(w, r, "id", "service request")
		if !ok {
			return
		}

		updated, err := call(r.Context(), actor, id)
		if err != nil {
			response.FromError(w, err)
			return
		}

		response.Success(w, http.StatusOK, message, updated)
	}
}

func (h *ServiceRequestHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	transition("Service request confirmed", h.requestUsecase.Confirm)(w, r)
}

func (h *ServiceRequestHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	transition("Payment confirmed", h.requestUsecase.ConfirmPayment)(w, r)
}

func (h *ServiceRequestHandler) StartWork(w http.ResponseWriter, r *http.Request) {
	transition("Service started", h.requestUsecase.StartWork)(w, r)
}

func (h *ServiceRequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	transition("Service completed", h.requestUsecase.Complete)(w, r)
}

func (h *ServiceRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := int64Var(w, r, "id", "service request")
	if !ok {
		return
	}

	var req dto.CancelServiceRequestRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	cancelled, err := h.requestUsecase.Cancel(r.Context(), actor, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service request cancelled", cancelled)
}

func (h *ServiceRequestHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := int64Var(w, r, "id", "service request")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.requestUsecase.RecordPayment(r.Context(), actor, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Payment status recorded", updated)
}
