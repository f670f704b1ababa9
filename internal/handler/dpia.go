// internal/handler/dpia.go
package handler

import (
	"net/http"

	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type DPIAHandler struct {
	guard *Guard
	dpias *service.DPIAService
}

func NewDPIAHandler(guard *Guard, dpias *service.DPIAService) *DPIAHandler {
	return &DPIAHandler{guard: guard, dpias: dpias}
}

func (h *DPIAHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	dpia, err := h.dpias.Get(r.Context(), m.Org.OrganizationID, projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dpia)
}

func (h *DPIAHandler) Create(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.CreateDPIAInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dpia, err := h.dpias.Create(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, dpia)
}

func (h *DPIAHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.UpdateDPIAInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dpia, err := h.dpias.Update(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dpia)
}

func (h *DPIAHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleAdmin)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	if err := h.dpias.Delete(r.Context(), m.Org.OrganizationID, projectID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}
