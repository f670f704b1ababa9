// internal/handler/standard.go
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type StandardHandler struct {
	guard   *Guard
	catalog *service.CatalogService
}

func NewStandardHandler(guard *Guard, catalog *service.CatalogService) *StandardHandler {
	return &StandardHandler{guard: guard, catalog: catalog}
}

func (h *StandardHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, model.RoleViewer); !ok {
		return
	}

	standards, err := h.catalog.ListStandards(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, standards)
}

func (h *StandardHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, model.RoleViewer); !ok {
		return
	}

	standardID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrStandardNotFound)
		return
	}

	standard, err := h.catalog.GetStandard(r.Context(), standardID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, standard)
}

// SearchControls filters the catalog by standardId, category, and a free-text
// search over code, name, and description.
func (h *StandardHandler) SearchControls(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.guard.Require(w, r, model.RoleViewer); !ok {
		return
	}

	filter := service.ControlFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("standardId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid standardId")
			return
		}
		filter.StandardID = &id
	}

	controls, err := h.catalog.SearchControls(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, controls)
}
