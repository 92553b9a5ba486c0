package handler

import (
	"net/http"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"
)

type ServicePriceHandler struct {
	priceUsecase usecase.ServicePriceUsecase
}

func NewServicePriceHandler(priceUsecase usecase.ServicePriceUsecase) *ServicePriceHandler {
	return &ServicePriceHandler{priceUsecase: priceUsecase}
}

func (h *ServicePriceHandler) List(w http.ResponseWriter, r *http.Request) {
	prices, err := h.priceUsecase.List(r.Context(), r.URL.Query().Get("service_type"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service prices retrieved successfully", prices)
}

func (h *ServicePriceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.UpsertServicePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := h.priceUsecase.Upsert(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service price saved successfully", price)
}
