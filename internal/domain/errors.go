// internal/domain/errors.go
package domain

import "errors"

var (
	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoMembership       = errors.New("no organization found")

	// Organization-related errors
	ErrOrganizationNotFound = errors.New("organization not found")

	// Project-related errors
	ErrProjectNotFound        = errors.New("project not found")
	ErrControlNotFound        = errors.New("control not found")
	ErrProjectControlNotFound = errors.New("control not found in project")
	ErrControlsAlreadyAdded   = errors.New("all controls are already added to this project")

	// Audit-related errors
	ErrAuditNotFound         = errors.New("audit not found")
	ErrControlAuditNotFound  = errors.New("control audit not found")
	ErrAuditInProgressExists = errors.New("an audit is already in progress for this project")
	ErrAuditCompleted        = errors.New("cannot modify a completed audit")

	// DPIA-related errors
	ErrDPIANotFound = errors.New("dpia not found")
	ErrDPIAExists   = errors.New("a dpia already exists for this project")

	// Organizational-measure errors
	ErrMeasureNotFound = errors.New("organizational measure not found")

	// Catalog errors
	ErrStandardNotFound = errors.New("standard not found")
)
