// internal/handler/project.go
package handler

import (
	"net/http"

	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type ProjectHandler struct {
	guard    *Guard
	projects *service.ProjectService
}

func NewProjectHandler(guard *Guard, projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{guard: guard, projects: projects}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), m.Org.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	var input service.CreateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Create(r.Context(), m.Org.OrganizationID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	detail, err := h.projects.Get(r.Context(), m.Org.OrganizationID, projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.UpdateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projects.Update(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleAdmin)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	if err := h.projects.Delete(r.Context(), m.Org.OrganizationID, projectID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

// Dashboard is the organization-wide rollup.
func (h *ProjectHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	summary, err := h.projects.Dashboard(r.Context(), m.Org.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
