// internal/repository/repository.go
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// isNotFound reports whether err is GORM's missing-row error. Repositories
// translate it into the entity's domain sentinel so services and handlers
// never see gorm errors.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
