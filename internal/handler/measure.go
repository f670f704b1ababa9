// internal/handler/measure.go
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type MeasureHandler struct {
	guard    *Guard
	measures *service.MeasureService
}

func NewMeasureHandler(guard *Guard, measures *service.MeasureService) *MeasureHandler {
	return &MeasureHandler{guard: guard, measures: measures}
}

type measureListResponse struct {
	Measures []model.OrganizationalMeasure `json:"measures"`
	Stats    model.MeasureStats            `json:"stats"`
}

func (h *MeasureHandler) List(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	measures, stats, err := h.measures.List(r.Context(), m.Org.OrganizationID, projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, measureListResponse{Measures: measures, Stats: stats})
}

func (h *MeasureHandler) Create(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.CreateMeasureInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	measure, err := h.measures.Create(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, measure)
}

func (h *MeasureHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, measureID, ok := h.ids(w, r)
	if !ok {
		return
	}

	measure, err := h.measures.Get(r.Context(), m.Org.OrganizationID, projectID, measureID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, measure)
}

func (h *MeasureHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, measureID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input service.UpdateMeasureInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	measure, err := h.measures.Update(r.Context(), m.Org.OrganizationID, projectID, measureID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, measure)
}

func (h *MeasureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, measureID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.measures.Delete(r.Context(), m.Org.OrganizationID, projectID, measureID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *MeasureHandler) ids(w http.ResponseWriter, r *http.Request) (projectID, measureID uuid.UUID, ok bool) {
	pid, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return pid, measureID, false
	}
	mid, ok := urlUUID(r, "measureId")
	if !ok {
		respondServiceError(w, domain.ErrMeasureNotFound)
		return pid, mid, false
	}
	return pid, mid, true
}
