package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cyberio/backend/internal/domain"
)

// translateErr maps gorm errors onto the domain error kinds.
func translateErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	default:
		return err
	}
}
