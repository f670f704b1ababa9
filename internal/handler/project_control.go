// internal/handler/project_control.go
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type ProjectControlHandler struct {
	guard    *Guard
	controls *service.ProjectControlService
}

func NewProjectControlHandler(guard *Guard, controls *service.ProjectControlService) *ProjectControlHandler {
	return &ProjectControlHandler{guard: guard, controls: controls}
}

type projectControlListResponse struct {
	Controls []model.ProjectControl `json:"controls"`
	Stats    model.ControlStats     `json:"stats"`
	Progress int                    `json:"progress"`
}

type addControlsResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

func (h *ProjectControlHandler) List(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	controls, stats, err := h.controls.List(r.Context(), m.Org.OrganizationID, projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projectControlListResponse{
		Controls: controls,
		Stats:    stats,
		Progress: stats.Progress(),
	})
}

func (h *ProjectControlHandler) Add(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.AddControlsInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.controls.AddControls(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, addControlsResponse{
		Message: "Controls added to project",
		Added:   result.Added,
		Skipped: result.Skipped,
	})
}

func (h *ProjectControlHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, controlID, ok := h.ids(w, r)
	if !ok {
		return
	}

	pc, err := h.controls.Get(r.Context(), m.Org.OrganizationID, projectID, controlID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pc)
}

func (h *ProjectControlHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, controlID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input service.UpdateProjectControlInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pc, err := h.controls.Update(r.Context(), m.Org.OrganizationID, projectID, controlID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, pc)
}

func (h *ProjectControlHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, controlID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.controls.Remove(r.Context(), m.Org.OrganizationID, projectID, controlID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *ProjectControlHandler) ids(w http.ResponseWriter, r *http.Request) (projectID, controlID uuid.UUID, ok bool) {
	pid, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return pid, controlID, false
	}
	cid, ok := urlUUID(r, "controlId")
	if !ok {
		respondServiceError(w, domain.ErrProjectControlNotFound)
		return pid, cid, false
	}
	return pid, cid, true
}
