// internal/handler/audit.go
package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/service"
)

type AuditHandler struct {
	guard  *Guard
	audits *service.AuditService
}

func NewAuditHandler(guard *Guard, audits *service.AuditService) *AuditHandler {
	return &AuditHandler{guard: guard, audits: audits}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	audits, err := h.audits.List(r.Context(), m.Org.OrganizationID, projectID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, audits)
}

func (h *AuditHandler) Start(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return
	}

	var input service.StartAuditInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	audit, err := h.audits.Start(r.Context(), m.Org.OrganizationID, projectID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, audit)
}

func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleViewer)
	if !ok {
		return
	}

	projectID, auditID, ok := h.ids(w, r)
	if !ok {
		return
	}

	audit, err := h.audits.Get(r.Context(), m.Org.OrganizationID, projectID, auditID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, audit)
}

// Complete closes an audit. The only PATCH an audit accepts.
func (h *AuditHandler) Complete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, auditID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input service.CompleteAuditInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	audit, err := h.audits.Complete(r.Context(), m.Org.OrganizationID, projectID, auditID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, audit)
}

func (h *AuditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleAdmin)
	if !ok {
		return
	}

	projectID, auditID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.audits.Delete(r.Context(), m.Org.OrganizationID, projectID, auditID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

// UpdateControlAudit records a verification result. The reviewer name comes
// from the caller's account, not the request body.
func (h *AuditHandler) UpdateControlAudit(w http.ResponseWriter, r *http.Request) {
	m, ok := h.guard.Require(w, r, model.RoleMember)
	if !ok {
		return
	}

	projectID, auditID, ok := h.ids(w, r)
	if !ok {
		return
	}
	controlAuditID, ok := urlUUID(r, "controlAuditId")
	if !ok {
		respondServiceError(w, domain.ErrControlAuditNotFound)
		return
	}

	var input service.UpdateControlAuditInput
	if err := decodeJSON(r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ca, err := h.audits.UpdateControlAudit(
		r.Context(),
		m.Org.OrganizationID, projectID, auditID, controlAuditID,
		m.User.DisplayName(),
		input,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ca)
}

func (h *AuditHandler) ids(w http.ResponseWriter, r *http.Request) (projectID, auditID uuid.UUID, ok bool) {
	pid, ok := urlUUID(r, "id")
	if !ok {
		respondServiceError(w, domain.ErrProjectNotFound)
		return pid, auditID, false
	}
	aid, ok := urlUUID(r, "auditId")
	if !ok {
		respondServiceError(w, domain.ErrAuditNotFound)
		return pid, aid, false
	}
	return pid, aid, true
}
