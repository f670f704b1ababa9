package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/domain"
)

type ErrorResponse struct { // TypeGen: ErrorResponse
	BaseResponse
	Error   string    `json:"error"`
	Details *[]string `json:"details,omitempty"`
}

type BaseResponse struct { // TypeGen: DefaultResponse
	Ok bool `json:"ok"`
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithDetails sends a validation error with field-level detail
func respondWithDetails(w http.ResponseWriter, code int, message string, details []string) {
	respondWithJSON(w, code, ErrorResponse{Error: message, Details: &details})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	// Sets content type header
	w.Header().Set("Content-Type", "application/json")

	// Sets the HTTP status code
	w.WriteHeader(code)

	// Encodes the response
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// respondServiceError maps domain sentinel errors onto HTTP status codes.
// Anything unrecognized is a 500 with a generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		respondWithDetails(w, http.StatusBadRequest, "Validation failed", validationDetails(valErrs))
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrAuditInProgressExists),
		errors.Is(err, domain.ErrDPIAExists):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNoMembership), errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrControlNotFound),
		errors.Is(err, domain.ErrProjectControlNotFound),
		errors.Is(err, domain.ErrAuditNotFound),
		errors.Is(err, domain.ErrControlAuditNotFound),
		errors.Is(err, domain.ErrDPIANotFound),
		errors.Is(err, domain.ErrMeasureNotFound),
		errors.Is(err, domain.ErrStandardNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAuditCompleted),
		errors.Is(err, domain.ErrControlsAlreadyAdded),
		errors.Is(err, domain.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// validationDetails flattens validator errors into "field: rule" strings.
func validationDetails(errs validator.ValidationErrors) []string {
	details := make([]string, 0, len(errs))
	for _, fe := range errs {
		details = append(details, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
	}
	return details
}

// urlUUID parses a chi URL parameter as a UUID. A malformed ID is
// indistinguishable from an absent row, so callers treat !ok as not found.
func urlUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
