package persistence

import (
	"errors"

	"github.com/affiliate/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps GORM sentinel errors onto domain errors
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// errConflict is returned when an optimistic lock check matched no row
func errConflict(entity string) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict,
		"The "+entity+" record has been modified by another transaction")
}
