package handler

import (
	"net/http"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"

	"github.com/gorilla/mux"
)

type QueueHandler struct {
	queueUsecase usecase.QueueUsecase
}

func NewQueueHandler(queueUsecase usecase.QueueUsecase) *QueueHandler {
	return &QueueHandler{queueUsecase: queueUsecase}
}

func (h *QueueHandler) DepartmentQueue(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	queue, err := h.queueUsecase.DepartmentQueue(r.Context(), actor, mux.Vars(r)["serviceType"], requestLocale(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Department queue retrieved successfully", queue)
}

// ManagementView accepts ?service_type= and a repeated or comma separated ?status=.
func (h *QueueHandler) ManagementView(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	query := &dto.ManagementQuery{
		ServiceType: r.URL.Query().Get("service_type"),
		Statuses:    queryList(r, "status"),
	}

	requests, err := h.queueUsecase.ManagementView(r.Context(), actor, query, requestLocale(r))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Service requests retrieved successfully", requests)
}
