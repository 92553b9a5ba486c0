package handler

import (
	"net/http"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"
)

type ChangeLogHandler struct {
	changeLogUsecase usecase.ChangeLogUsecase
}

func NewChangeLogHandler(changeLogUsecase usecase.ChangeLogUsecase) *ChangeLogHandler {
	return &ChangeLogHandler{changeLogUsecase: changeLogUsecase}
}

func (h *ChangeLogHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.RecordChangeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	change, err := h.changeLogUsecase.Record(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Change recorded successfully", change)
}

func (h *ChangeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := &dto.ChangeLogQuery{
		Kind:   q.Get("kind"),
		Search: q.Get("search"),
		Limit:  queryInt(r, "limit"),
	}

	changes, err := h.changeLogUsecase.List(r.Context(), actor, query)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Changes retrieved successfully", changes)
}

func (h *ChangeLogHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := int64Var(w, r, "id", "change")
	if !ok {
		return
	}

	change, err := h.changeLogUsecase.Acknowledge(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Change acknowledged", change)
}
